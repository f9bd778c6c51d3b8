package internal

import (
	"context"
	"os"
	"sync"
)

// RootEnv overrides the root directory used by Instance.
const RootEnv = "CURECONNECT_ROOT"

var (
	instanceMu sync.Mutex
	instance   *Application
)

// Boot returns the process-wide Application, building it on the first call.
// Later calls return the same instance and ignore root and opts. A failed
// build is not remembered, so the next call tries again.
func Boot(root string, opts ...Option) (*Application, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return instance, nil
	}
	app, err := New(root, opts...)
	if err != nil {
		return nil, err
	}
	instance = app
	return instance, nil
}

// Instance returns the booted Application, booting one rooted at
// $CURECONNECT_ROOT (or the working directory) when none exists yet.
func Instance(opts ...Option) (*Application, error) {
	instanceMu.Lock()
	app := instance
	instanceMu.Unlock()
	if app != nil {
		return app, nil
	}
	return Boot(DefaultRoot(), opts...)
}

// DefaultRoot returns $CURECONNECT_ROOT or the working directory.
func DefaultRoot() string {
	if root := os.Getenv(RootEnv); root != "" {
		return root
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResetForTesting shuts the singleton down and forgets it.
func ResetForTesting() error {
	instanceMu.Lock()
	app := instance
	instance = nil
	instanceMu.Unlock()

	if app == nil {
		return nil
	}
	return app.Shutdown(context.Background())
}
