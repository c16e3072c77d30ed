package intake

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/adapters/engine"
	"github.com/aretw0/intake/pkg/adapters/local"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/adapters/sqlite"
	"github.com/aretw0/intake/pkg/adapters/webhook"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/observability"
	"github.com/aretw0/intake/pkg/persistence/middleware"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/aretw0/intake/pkg/shell"
	"github.com/aretw0/intake/pkg/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
)

// App is the wired intake service: a workflow engine (remote or local), the
// session manager on top of it and the HTTP surface.
type App struct {
	Config   *config.Config
	Engine   ports.WorkflowEngine
	Local    *local.Engine // nil when talking to a remote engine
	Sessions *session.Manager
	Metrics  *observability.Metrics

	gatherer prometheus.Gatherer
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	local    bool
	closers  []func() error
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLocal runs the workflow engine in-process on the configured store,
// even when an engine URL is configured.
func WithLocal(enabled bool) Option {
	return func(a *App) {
		a.local = enabled
	}
}

// WithLifecycleHooks registers extra observability hooks on every controller.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithRegistry registers the metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.gatherer = reg
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New wires an App from cfg. Without an engine URL the local engine is used.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	reg, ok := a.gatherer.(*prometheus.Registry)
	if !ok {
		reg = prometheus.NewRegistry()
		a.gatherer = reg
	}
	a.Metrics = observability.NewMetrics(reg)

	var redisClient *backend.Client
	if cfg.Store.Driver == config.StoreRedis {
		redisClient = newRedisClient(cfg)
		a.closers = append(a.closers, redisClient.Close)
	}

	if a.local || cfg.Engine.URL == "" {
		store, closer, err := openStore(cfg, redisClient)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
		a.Local = local.New(store, local.WithLogger(a.logger))
		a.Engine = a.Local
		a.logger.Info("Using local workflow engine", "store", cfg.Store.Driver)
	} else {
		a.Engine = engine.New(cfg.Engine.URL,
			engine.WithTimeout(cfg.EngineTimeout()),
			engine.WithPaths(cfg.Engine.GetSessionPath, cfg.Engine.ChangeChatPath),
			engine.WithLogger(a.logger),
		)
		a.logger.Info("Using remote workflow engine", "url", cfg.Engine.URL, "timeout", cfg.EngineTimeout())
	}

	hooks := observability.Chain(a.Metrics.Hooks(), observability.LogHooks(a.logger), a.hooks)
	mgrOpts := []session.Option{
		session.WithLogger(a.logger),
		session.WithControllerOptions(workflow.WithLifecycleHooks(hooks)),
	}
	if redisClient != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(redis.NewLocker(redisClient, cfg.Store.Redis.Prefix)))
	}
	a.Sessions = session.NewManager(a.Engine, mgrOpts...)
	return a, nil
}

// Handler returns the HTTP surface: the shell, the metrics endpoint and, for a
// local engine, its webhooks.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	if path := a.Config.Server.MetricsPath; path != "" {
		r.Handle(path, promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}
	if a.Local != nil {
		webhook.Register(r, a.Local,
			webhook.WithEncodedNested(a.Config.Engine.EncodeNested),
			webhook.WithLogger(a.logger),
		)
	}
	r.Mount("/", shell.NewHandler(a.Sessions, shell.WithLogger(a.logger)))
	return r
}

// Close releases the store and client connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStore opens the record store selected by cfg. The returned closer may be nil.
func OpenStore(cfg *config.Config) (ports.RecordStore, func() error, error) {
	var client *backend.Client
	if cfg.Store.Driver == config.StoreRedis {
		client = newRedisClient(cfg)
	}
	store, closer, err := openStore(cfg, client)
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, nil, err
	}
	if client != nil {
		closer = client.Close
	}
	return store, closer, nil
}

func openStore(cfg *config.Config, client *backend.Client) (ports.RecordStore, func() error, error) {
	var (
		store  ports.RecordStore
		closer func() error
	)
	switch cfg.Store.Driver {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Store.Redis.TTLDuration())}
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		store = redis.NewFromClient(client, opts...)
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store, closer = s, s.Close
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	sealed, err := sealStore(cfg, store)
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, nil, err
	}
	return sealed, closer, nil
}

func sealStore(cfg *config.Config, store ports.RecordStore) (ports.RecordStore, error) {
	active, fallback, err := cfg.Store.Keys()
	if err != nil || active == nil {
		return store, err
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	if err != nil {
		return nil, err
	}
	return mw(store), nil
}

func newRedisClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     cfg.Store.Redis.Addr,
		Password: cfg.Store.Redis.Password,
		DB:       cfg.Store.Redis.DB,
	})
}
