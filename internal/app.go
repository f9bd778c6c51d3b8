package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cureconnect/portal/internal/models"
	"github.com/cureconnect/portal/middlewares"
	"github.com/cureconnect/portal/pkg/cache"
	"github.com/cureconnect/portal/pkg/config"
	"github.com/cureconnect/portal/pkg/cookie"
	"github.com/cureconnect/portal/pkg/db"
	"github.com/cureconnect/portal/pkg/health"
	"github.com/cureconnect/portal/pkg/i18n"
	"github.com/cureconnect/portal/pkg/logger"
	"github.com/cureconnect/portal/pkg/mailer"
	"github.com/cureconnect/portal/pkg/mailer/resend"
	"github.com/cureconnect/portal/pkg/redis"
	"github.com/cureconnect/portal/pkg/render"
	"github.com/cureconnect/portal/pkg/session"
)

// Boot-time limits.
const (
	bootTimeout       = 30 * time.Second
	dbConnectAttempts = 3
	sessionPrefix     = "cureconnect:session:"
	maxMemorySessions = 100_000
)

// Application holds everything a request needs: configuration, the storage
// handle, the renderer, the translator and the route table. It keeps no
// per-request state, so one instance serves concurrent requests.
type Application struct {
	root        string
	cfg         *config.Config
	log         *slog.Logger
	db          *sqlx.DB
	redis       goredis.UniversalClient
	renderer    render.Renderer
	translator  *i18n.Translator
	mailer      *mailer.Mailer
	sessions    session.Store
	cookies     *cookie.Manager
	static      fs.FS
	routes      map[string]Route
	controllers Registry
	checks      health.Checks

	handlerOnce sync.Once
	handler     http.Handler

	closeMu sync.Mutex
	closed  bool
	closers []func(context.Context) error
}

// New builds a fresh Application rooted at root. Construction follows a fixed
// order: configuration, storage (with migrations), sessions, translator,
// renderer, mailer, route table. A failure releases whatever was opened and
// returns an error joined with ErrConfig, ErrConnection or ErrTemplates.
func New(root string, opts ...Option) (*Application, error) {
	s := settings{parser: config.ViperParser{}}
	for _, opt := range opts {
		opt(&s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootTimeout)
	defer cancel()

	cfg := s.config
	if cfg == nil {
		var err error
		if cfg, err = loadConfig(root, s.parser); err != nil {
			return nil, errors.Join(ErrConfig, err)
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	log := s.logger
	if log == nil {
		log = newLogger(cfg)
	}

	a := &Application{
		root:        root,
		cfg:         cfg,
		log:         log,
		static:      s.static,
		routes:      s.routes,
		controllers: s.controllers,
		checks:      health.Checks{},
	}
	if a.routes == nil {
		a.routes = DefaultRoutes()
	}
	if a.controllers == nil {
		a.controllers = Registry{}
	}

	if err := a.boot(ctx, s); err != nil {
		if cerr := a.Shutdown(context.Background()); cerr != nil {
			log.Warn("cleanup after failed boot", slog.Any("error", cerr))
		}
		return nil, err
	}

	log.Debug("application booted",
		slog.String("environment", cfg.App.Environment),
		slog.String("driver", cfg.Database.Driver),
		slog.Int("routes", len(a.routes)),
	)
	return a, nil
}

func (a *Application) boot(ctx context.Context, s settings) error {
	if err := a.openStorage(ctx); err != nil {
		return errors.Join(ErrConnection, err)
	}
	if err := a.openSessions(ctx, s.sessions); err != nil {
		return errors.Join(ErrConnection, err)
	}

	a.translator = i18n.New(dirOrFS(a.cfg.App.LangPath, s.lang), i18n.WithLogger(a.log))
	a.onShutdown(func(context.Context) error { return a.translator.Close() })

	if err := a.openRenderer(s.templates); err != nil {
		return errors.Join(ErrTemplates, err)
	}

	a.openMailer(s.mailSender, s.mail)
	return nil
}

func loadConfig(root string, parser config.Parser) (*config.Config, error) {
	if config.Environment() == config.EnvTesting {
		cfg := config.Testing(root)
		return cfg, cfg.Validate()
	}
	return config.Load(root, config.WithParser(parser))
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsTesting() {
		return logger.NewNope()
	}
	level := slog.LevelInfo
	if cfg.App.Debug {
		level = slog.LevelDebug
	}
	return logger.NewWithSentry(
		logger.Config{Level: level},
		logger.SentryConfig{
			DSN:         cfg.Services.Sentry.DSN,
			Environment: cfg.App.Environment,
			Release:     cfg.App.Version,
		},
		middlewares.RequestIDExtractor(),
		middlewares.LanguageExtractor(),
	)
}

func (a *Application) openStorage(ctx context.Context) error {
	attempts := dbConnectAttempts
	if a.cfg.Database.Driver == config.DriverSQLite {
		attempts = 1
	}
	conn, err := db.Open(ctx, a.cfg.Database, db.WithRetry(attempts, time.Second))
	if err != nil {
		return err
	}
	a.db = conn
	a.onShutdown(db.Shutdown(conn))
	a.checks["database"] = db.Healthcheck(conn)

	migrations, err := models.Migrations(conn.DriverName())
	if err != nil {
		return err
	}
	return db.Migrate(ctx, conn, migrations, a.log)
}

func (a *Application) openSessions(ctx context.Context, store session.Store) error {
	secret := a.cfg.App.Secret
	if len(secret) < cookie.MinSecretLen && !a.cfg.IsProduction() {
		secret = config.DevSecret
	}
	cookies, err := cookie.New(secret, cookie.WithSecure(strings.HasPrefix(a.cfg.App.BaseURL, "https://")))
	if err != nil {
		return err
	}
	a.cookies = cookies

	if url := a.cfg.Services.Redis.URL; url != "" {
		client, err := redis.Open(ctx, url)
		if err != nil {
			return err
		}
		a.redis = client
		a.onShutdown(func(context.Context) error { return client.Close() })
		a.checks["redis"] = redis.Healthcheck(client)
		if store == nil {
			store = session.NewCacheStore(cache.NewRedis[session.Session](client, cache.JSON[session.Session]{}, cache.WithPrefix(sessionPrefix)))
		}
	}

	if store == nil {
		mem := cache.NewMemory[session.Session](cache.WithMaxEntries(maxMemorySessions))
		a.onShutdown(func(context.Context) error { return mem.Close() })
		store = session.NewCacheStore(mem)
	}
	a.sessions = store
	return nil
}

func (a *Application) openRenderer(fallback fs.FS) error {
	fsys, err := dirOr(a.cfg.App.TemplatesPath, fallback)
	if err != nil {
		return err
	}
	production := a.cfg.IsProduction()

	var r render.Renderer
	if a.cfg.App.TemplateEngine == config.EngineHTML && render.HasLayout(fsys) {
		h, err := render.NewHTMLEngine(fsys,
			render.WithTranslator(a.translator),
			render.WithTemplateCache(production),
			render.WithHTMLLogger(a.log),
		)
		if err != nil {
			return err
		}
		a.onShutdown(func(context.Context) error { return h.Close() })
		r = h
	} else {
		r = render.NewEngine(fsys, render.WithCache(production), render.WithEngineLogger(a.log))
	}

	r.AddGlobal("app_name", a.cfg.App.Name)
	r.AddGlobal("assets_url", a.cfg.App.AssetsURL)
	r.AddGlobal("base_url", a.cfg.App.BaseURL)
	a.renderer = r
	return nil
}

func (a *Application) openMailer(sender mailer.Sender, templates fs.FS) {
	mc := a.cfg.Services.Mailer
	if sender == nil && mc.Enabled() {
		sender = resend.New(resend.Config{APIKey: mc.APIKey, From: mc.From})
	}
	if sender == nil || templates == nil {
		a.log.Debug("mailer disabled")
		return
	}
	a.mailer = mailer.New(sender, mailer.NewRenderer(templates), mailer.Config{From: mc.From})
}

// dirOr returns the directory at path when it exists, otherwise fallback.
func dirOr(path string, fallback fs.FS) (fs.FS, error) {
	if path != "" {
		if st, err := os.Stat(path); err == nil && st.IsDir() {
			return os.DirFS(path), nil
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
}

// dirOrFS is dirOr for optional content: a missing directory reads as empty.
func dirOrFS(path string, fallback fs.FS) fs.FS {
	fsys, err := dirOr(path, fallback)
	if err != nil {
		return os.DirFS(path)
	}
	return fsys
}

func (a *Application) onShutdown(fn func(context.Context) error) {
	a.closeMu.Lock()
	defer a.closeMu.Unlock()
	a.closers = append(a.closers, fn)
}

// Shutdown releases storage, caches and connections in reverse order of
// acquisition. Calling it more than once is a no-op.
func (a *Application) Shutdown(ctx context.Context) error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	closers := slices.Clone(a.closers)
	a.closers = nil
	a.closeMu.Unlock()

	var errs []error
	for _, fn := range slices.Backward(closers) {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Application) Root() string { return a.root }
func (a *Application) Config() *config.Config { return a.cfg }
func (a *Application) Logger() *slog.Logger { return a.log }
func (a *Application) DB() *sqlx.DB { return a.db }
func (a *Application) Renderer() render.Renderer { return a.renderer }
func (a *Application) Translator() *i18n.Translator { return a.translator }
func (a *Application) Sessions() session.Store { return a.sessions }
func (a *Application) Redis() goredis.UniversalClient { return a.redis }

// Mailer returns nil when no transport or templates are configured.
func (a *Application) Mailer() *mailer.Mailer { return a.mailer }
