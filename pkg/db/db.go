package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cureconnect/portal/pkg/config"
)

// sqlx driver names.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Option tunes Open.
type Option func(*options)

type options struct {
	attempts      int
	retryInterval time.Duration
	maxOpenConns  int
	maxIdleConns  int
	connLifetime  time.Duration
}

// WithRetry retries a failed connection up to attempts times with a linearly
// growing wait.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.retryInterval = interval
	}
}

// WithPool sets the pool limits for network databases.
func WithPool(maxOpen, maxIdle int, lifetime time.Duration) Option {
	return func(o *options) {
		o.maxOpenConns = maxOpen
		o.maxIdleConns = maxIdle
		o.connLifetime = lifetime
	}
}

// Open connects to the database described by cfg and pings it.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (*sqlx.DB, error) {
	o := options{
		attempts:      1,
		retryInterval: time.Second,
		maxOpenConns:  10,
		maxIdleConns:  5,
		connLifetime:  30 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}

	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := range max(o.attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
			case <-time.After(time.Duration(i) * o.retryInterval):
			}
		}

		conn, err := sqlx.Open(driver, dsn)
		if err != nil {
			lastErr = err
			continue
		}
		configurePool(conn, driver, o)

		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			lastErr = err
			continue
		}
		return conn, nil
	}
	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

func configurePool(conn *sqlx.DB, driver string, o options) {
	if driver == DriverSQLite {
		// Every connection to ":memory:" is a separate database.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
		return
	}
	conn.SetMaxOpenConns(o.maxOpenConns)
	conn.SetMaxIdleConns(o.maxIdleConns)
	conn.SetConnMaxLifetime(o.connLifetime)
}

// DSN returns the sqlx driver name and connection string for cfg.
func DSN(cfg config.Database) (driver, dsn string, err error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		name := cfg.Name
		if name == "" || name == ":memory:" {
			name = ":memory:"
		}
		return DriverSQLite, "file:" + name + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil

	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(portOr(cfg.Port, 3306)))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Params = map[string]string{"charset": charsetOr(cfg.Charset)}
		return DriverMySQL, mc.FormatDSN(), nil

	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(portOr(cfg.Port, 5432))),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		return DriverPostgres, u.String(), nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
}

func portOr(port, def int) int {
	if port <= 0 {
		return def
	}
	return port
}

func charsetOr(cs string) string {
	if strings.TrimSpace(cs) == "" {
		return "utf8mb4"
	}
	return cs
}

// Healthcheck returns a readiness probe that pings conn.
func Healthcheck(conn *sqlx.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := conn.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a hook that closes conn.
func Shutdown(conn *sqlx.DB) func(context.Context) error {
	return func(context.Context) error {
		return conn.Close()
	}
}
