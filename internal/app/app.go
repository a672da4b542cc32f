package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/erebus-go/erebus/internal/config"
	"github.com/erebus-go/erebus/internal/dev"
	errs "github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/controller"
	"github.com/erebus-go/erebus/pkg/dom"
	"github.com/erebus-go/erebus/pkg/fetch"
	"github.com/erebus-go/erebus/pkg/live"
	"github.com/erebus-go/erebus/pkg/middleware"
	"github.com/erebus-go/erebus/pkg/router"
)

// ShutdownTimeout bounds the graceful shutdown of Run.
const ShutdownTimeout = 10 * time.Second

// Options carries the dependencies an App does not build from its config.
type Options struct {
	Logger *slog.Logger

	// HTTPClient is used for http(s) fragments.
	HTTPClient *http.Client

	// S3 replaces the client built from fragments.s3.
	S3 fetch.S3API

	// TracerProvider replaces the global provider when tracing is enabled.
	TracerProvider trace.TracerProvider

	// Registry receives the metrics. Default: a fresh registry with the Go
	// and process collectors.
	Registry *prometheus.Registry
}

// site is the part of an App rebuilt when the configuration reloads.
type site struct {
	cfg     *config.Config
	fetcher *fetch.Client
	routes  []route
}

// App serves a configured erebus site.
type App struct {
	opts   Options
	logger *slog.Logger

	mu   sync.RWMutex
	site *site

	live      *live.Server
	registry  *prometheus.Registry
	collector *middleware.Collector
	watcher   *dev.Watcher
	handler   http.Handler
}

// New validates cfg and builds the App.
func New(cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	st, err := newSite(cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:   opts,
		logger: logger,
		site:   st,
	}

	if cfg.Metrics.Enabled {
		a.registry = opts.Registry
		if a.registry == nil {
			a.registry = prometheus.NewRegistry()
			a.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		a.collector = middleware.NewCollector(
			middleware.WithRegistry(a.registry),
			middleware.WithNamespace(cfg.Metrics.Namespace),
		)
	}

	a.live = live.NewServer(a.setupSession,
		live.WithLogger(logger),
		live.WithCheckOrigin(originCheck(cfg.Dev.AllowedOrigins)),
		live.WithDevMode(cfg.Dev.HotReload),
	)

	if cfg.Dev.HotReload {
		a.watcher = newWatcher(cfg)
		reloader := dev.NewReloader(a.live, logger)
		reloader.OnConfig = func(string) {
			if err := a.Reload(); err != nil {
				logger.Error("config reload failed", "error", err)
			}
		}
		a.watcher.OnChange(reloader.Handle)
	}

	a.handler = a.routes(cfg)
	return a, nil
}

func newSite(cfg *config.Config, opts Options, logger *slog.Logger) (*site, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	routes, err := compileRoutes(cfg)
	if err != nil {
		return nil, err
	}
	return &site{
		cfg:     cfg,
		fetcher: newFetcher(cfg, opts, logger),
		routes:  routes,
	}, nil
}

func newWatcher(cfg *config.Config) *dev.Watcher {
	paths := cfg.WatchPaths()
	if p := cfg.Path(); p != "" {
		paths = append(paths, p)
	}
	ignore := append(append([]string(nil), dev.DefaultIgnore...), cfg.Dev.Ignore...)
	return dev.NewWatcher(dev.WatcherConfig{Paths: paths, Ignore: ignore})
}

func (a *App) current() *site {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.site
}

func (a *App) config() *config.Config {
	return a.current().cfg
}

// Config returns the configuration in use.
func (a *App) Config() *config.Config {
	return a.config()
}

// Live returns the live server.
func (a *App) Live() *live.Server {
	return a.live
}

// Handler returns the HTTP handler of the site.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Reload re-reads the configuration file. Sessions opened afterwards use
// the new routes; open sessions keep theirs until the page reloads. The
// listen address, metrics and static settings are fixed at New.
func (a *App) Reload() error {
	path := a.config().Path()
	if path == "" {
		return errs.New(errs.CodeConfigNotFound).WithDetail("configuration was not loaded from a file")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	st, err := newSite(cfg, a.opts, a.logger)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.site = st
	a.mu.Unlock()
	a.logger.Info("config reloaded", "path", path, "routes", len(st.routes))
	return nil
}

func (a *App) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/", a.serveShell)
	a.live.Mount(r)

	if cfg.Static.Dir != "" {
		static := newStaticHandler(cfg.StaticPath(), cfg.Static.Prefix, cfg.Dev.HotReload)
		pattern := cfg.Static.Prefix
		if !strings.HasSuffix(pattern, "/") {
			pattern += "/"
		}
		r.Get(pattern+"*", static.ServeHTTP)
		r.Head(pattern+"*", static.ServeHTTP)
	}

	if a.registry != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// middleware returns the dispatch middleware of a new session.
func (a *App) middleware(cfg *config.Config) []router.Middleware {
	var mw []router.Middleware
	if a.collector != nil {
		mw = append(mw, a.collector.Middleware())
	}
	if cfg.Tracing.Enabled {
		opts := []middleware.OTelOption{middleware.WithTracerName(cfg.Tracing.TracerName)}
		if a.opts.TracerProvider != nil {
			opts = append(opts, middleware.WithTracerProvider(a.opts.TracerProvider))
		}
		mw = append(mw, middleware.OpenTelemetry(opts...))
	}
	return mw
}

// setupSession binds a router engine and a controller factory to a new
// browser session.
func (a *App) setupSession(ctx context.Context, s *live.Session) error {
	st := a.current()
	logger := s.Logger()

	factory := controller.New(controller.Config{
		DefaultTarget: st.cfg.Target,
		Document:      s,
		Loader:        dom.NewFetchLoader(st.fetcher),
		Logger:        logger,
	})

	opts := []router.Option{
		router.WithLocation(s),
		router.WithLogger(logger),
		router.WithMiddleware(a.middleware(st.cfg)...),
	}
	if st.cfg.Router.Serialize {
		opts = append(opts, router.WithSerializedDispatch())
	}
	engine := router.New(opts...)
	register(engine, factory, st.routes, st.cfg.Default)

	engine.Error(func(err error) {
		s.Send(live.Message{Type: live.TypeError, Error: errs.FromError(err, errs.CodeRouterError).Code})
	})

	if a.collector != nil {
		a.collector.SessionOpened()
		context.AfterFunc(ctx, a.collector.SessionClosed)
	}

	engine.Start(ctx)
	return nil
}

// Run serves the site on the configured address until ctx is canceled,
// then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	cfg := a.config()
	srv := &http.Server{
		Addr:              cfg.DevAddress(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.watcher != nil {
		go func() {
			if err := a.watcher.Start(ctx); err != nil {
				a.logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", srv.Addr, "url", cfg.DevURL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		a.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down...")
	a.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", "error", err)
		return err
	}
	a.logger.Info("server shutdown complete")
	return nil
}

// Close stops the watcher and disconnects every session.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.live.Close()
}
