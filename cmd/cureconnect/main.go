// Command cureconnect runs the CureConnect portal.
//
// Usage:
//
//	cureconnect [flags] [serve]       serve HTTP until SIGINT/SIGTERM
//	cureconnect [flags] render <path> dispatch one GET request and print it
//	cureconnect [flags] migrate       apply database migrations and exit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/cureconnect/portal"
	"github.com/cureconnect/portal/internal"
	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/httpx"
	"github.com/cureconnect/portal/pkg/logger"
)

type options struct {
	addr     string
	root     string
	failFast bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "cureconnect:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	opts, rest, err := parseFlags(args)
	if err != nil {
		return err
	}

	if err := godotenv.Load(filepath.Join(opts.root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cmd := "serve"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}
	switch cmd {
	case "serve":
		return serve(opts)
	case "render":
		path := "/"
		if len(rest) > 0 {
			path = rest[0]
		}
		return renderPath(opts, path, stdout)
	case "migrate":
		return migrate(opts, stdout)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseFlags(args []string) (options, []string, error) {
	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	var opts options
	fset := flag.NewFlagSet("cureconnect", flag.ContinueOnError)
	fset.StringVar(&opts.addr, "addr", addr, "listen address (env PORT)")
	fset.StringVar(&opts.root, "root", internal.DefaultRoot(), "application root holding config.yaml and .env")
	fset.BoolVar(&opts.failFast, "fail-fast", false, "exit instead of serving an error page when boot fails")
	if err := fset.Parse(args); err != nil {
		return options{}, nil, err
	}
	return opts, fset.Args(), nil
}

func serve(opts options) error {
	setTimezone(bootTimezone(opts.root), logger.New(logger.Config{Output: os.Stderr, Text: true}))

	app, err := portal.Boot(opts.root)
	if err != nil {
		if opts.failFast {
			return err
		}
		return serveBootFailure(opts.addr, err, config.Environment() == config.EnvProduction)
	}

	return app.Run(internal.Address(opts.addr))
}

// bootTimezone reads the configured timezone ahead of boot. A configuration
// that does not load falls back to the default zone; boot reports the error.
func bootTimezone(root string) string {
	if cfg, err := config.Load(root); err == nil && cfg.App.Timezone != "" {
		return cfg.App.Timezone
	}
	return config.Default(root).App.Timezone
}

// setTimezone pins time.Local to tz. Unknown zones keep the system zone.
func setTimezone(tz string, log *slog.Logger) {
	if tz == "" {
		return
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warn("unknown timezone, keeping system zone", slog.String("timezone", tz), slog.Any("error", err))
		return
	}
	time.Local = loc
}

func renderPath(opts options, path string, stdout io.Writer) error {
	app, err := portal.New(opts.root)
	if err != nil {
		return err
	}
	defer func() { _ = app.Shutdown(context.Background()) }()

	resp := app.HandleRequest(httpx.NewRequest(http.MethodGet, path))
	_, err = fmt.Fprintf(stdout, "%d %s\n\n%s\n", resp.Status, http.StatusText(resp.Status), resp.Body)
	return err
}

// migrate boots the application, which applies pending migrations, and exits.
func migrate(opts options, stdout io.Writer) error {
	app, err := portal.New(opts.root, internal.WithLogger(logger.New(logger.Config{Output: stdout, Text: true})))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "migrations applied (%s)\n", app.Config().Database.Driver)
	return app.Shutdown(context.Background())
}
