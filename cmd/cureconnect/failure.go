package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/a-h/templ"

	"github.com/cureconnect/portal/middlewares"
	"github.com/cureconnect/portal/pkg/logger"
)

// serveBootFailure answers every request with the boot failure page until
// the process is stopped.
func serveBootFailure(addr string, bootErr error, production bool) error {
	log := logger.New(logger.Config{Output: os.Stderr, Text: true})
	log.Error("application failed to boot", slog.Any("error", bootErr))
	if !production {
		fmt.Fprintln(os.Stderr, "Application Error:", bootErr)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           bootFailureHandler(bootErr, production),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving boot failure page", slog.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return bootErr
		}
		return errors.Join(bootErr, err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return errors.Join(bootErr, srv.Shutdown(shutdownCtx))
}

// bootFailureHandler renders the failure page with status 500. Production
// hides the error chain.
func bootFailureHandler(bootErr error, production bool) http.Handler {
	page := failurePage(bootErr)
	if production {
		page = staticPage(middlewares.RecoverBody)
	}
	return templ.Handler(page, templ.WithStatus(http.StatusInternalServerError))
}

func staticPage(body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	})
}

// failurePage lists the error and each error it wraps.
func failurePage(bootErr error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>Application Error</title></head><body>")
		b.WriteString("<h1>Application Error</h1><ol>")
		for _, e := range chain(bootErr) {
			b.WriteString("<li><pre>")
			b.WriteString(templ.EscapeString(e.Error()))
			b.WriteString("</pre></li>")
		}
		b.WriteString("</ol></body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// chain flattens err and everything it wraps, including joined errors.
func chain(err error) []error {
	if err == nil {
		return nil
	}
	out := []error{err}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			out = append(out, chain(e)...)
		}
	case interface{ Unwrap() error }:
		out = append(out, chain(u.Unwrap())...)
	}
	return out
}
