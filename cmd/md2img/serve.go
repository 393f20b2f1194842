package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alnah/go-md2img"
	"github.com/alnah/go-md2img/internal/config"
	"github.com/alnah/go-md2img/internal/fileutil"
	"github.com/alnah/go-md2img/internal/hints"
	"github.com/alnah/go-md2img/internal/httpapi"
	"github.com/alnah/go-md2img/internal/logger"
	"github.com/alnah/go-md2img/internal/metrics"
)

// readHeaderTimeout bounds slow clients sending headers.
const readHeaderTimeout = 10 * time.Second

// runServe runs the HTTP service until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, fs, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	applyServeFlags(fs, f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	defer func() { _ = log.Sync() }()

	// Before the gate is sized from GOMAXPROCS.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	undo, _ := maxprocs.Set(maxprocs.Logger(log.Named("maxprocs").Sugar().Infof))
	defer undo()

	svc, err := newService(cfg, log, env)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	return svc.serve(ctx, ln)
}

// resolveConfig loads the config file and applies environment overrides.
// An explicit path or name must exist; the implicit search falls back to
// defaults when nothing is found.
func resolveConfig(explicit string, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Environ(), env.Stderr)
	envCfg := loadEnvConfig(env.Getenv, env.Stderr)

	nameOrPath := explicit
	if nameOrPath == "" {
		nameOrPath = envCfg.ConfigPath
	}

	var cfg *config.Config
	var err error
	if nameOrPath == "" {
		cfg, err = config.LoadConfig("")
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.DefaultConfig(), nil
		}
	} else {
		cfg, err = config.LoadConfig(nameOrPath)
		if errors.Is(err, config.ErrConfigNotFound) && !strings.ContainsAny(nameOrPath, `/\`) {
			err = fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(nameOrPath)))
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// newLogger builds the service logger. Development mode switches to
// console output.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := cfg.Log
	if cfg.Development {
		lc.Format = "console"
	}
	return logger.New(lc)
}

// newRenderer wires a Renderer and its gate from cfg.
func newRenderer(cfg *config.Config, log *zap.Logger, env *Environment, obs md2img.Observer) (*md2img.Renderer, *md2img.Gate, error) {
	gate := md2img.NewGate(md2img.GateOptions{
		Size:         cfg.Render.Workers,
		MaxQueue:     cfg.Render.MaxQueue,
		QueueTimeout: cfg.Render.QueueTimeout.Std(),
	})

	opts := []md2img.Option{
		md2img.WithGate(gate),
		md2img.WithStageTimeout(cfg.Render.StageTimeout.Std()),
		md2img.WithPixelRatio(cfg.Render.PixelRatio),
		md2img.WithDebugDir(cfg.Render.ScreenshotDir()),
		md2img.WithAssetPath(cfg.Assets.BasePath),
		md2img.WithPageAssets(md2img.PageAssets{
			ReactURL:           cfg.Assets.React,
			ReactDOMURL:        cfg.Assets.ReactDOM,
			CaptureLibURL:      cfg.Assets.CaptureLib,
			ComponentScriptURL: cfg.Assets.ComponentScript,
			ComponentStyleURL:  cfg.Assets.ComponentStyle,
		}),
		md2img.WithBrowserOptions(md2img.BrowserOptions{
			Bin:              cfg.Browser.Bin,
			Headless:         cfg.Browser.Headless,
			NoSandbox:        cfg.Browser.NoSandbox,
			WindowWidth:      cfg.Browser.WindowWidth,
			WindowHeight:     cfg.Browser.WindowHeight,
			OperationTimeout: cfg.Browser.OperationTimeout.Std(),
		}),
		md2img.WithLogger(log.Named("render")),
		md2img.WithObserver(obs),
	}
	if env.Launcher != nil {
		opts = append(opts, md2img.WithLauncher(env.Launcher))
	}

	r, err := md2img.NewRenderer(opts...)
	if err != nil {
		return nil, nil, err
	}
	return r, gate, nil
}

// service is the wired HTTP rendering service.
type service struct {
	cfg     *config.Config
	log     *zap.Logger
	gate    *md2img.Gate
	metrics *metrics.Registry
	server  *http.Server
}

// newService prepares directories and wires renderer, metrics and router.
func newService(cfg *config.Config, log *zap.Logger, env *Environment) (*service, error) {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := fileutil.EnsureDir(cfg.Render.TempDir); err != nil {
		log.Error("creating temp directory", zap.String("dir", cfg.Render.TempDir), zap.Error(err))
	}
	if cfg.Render.DebugDir != "" {
		if err := fileutil.EnsureDir(cfg.Render.DebugDir); err != nil {
			log.Warn("creating debug directory", zap.String("dir", cfg.Render.DebugDir), zap.Error(err))
		}
	}

	reg := metrics.New()
	renderer, gate, err := newRenderer(cfg, log, env, reg)
	if err != nil {
		return nil, err
	}
	reg.WatchGate(gate)

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	router := httpapi.NewRouter(httpapi.Options{
		Renderer:    renderer,
		Logger:      log.Named("http"),
		Metrics:     reg,
		CORSOrigins: cfg.Server.CORSOrigins,
		BodyLimit:   cfg.Server.BodyLimit,
		Limiter:     limiter,
		Development: cfg.Development,
		Now:         env.Now,
	})

	return &service{
		cfg:     cfg,
		log:     log,
		gate:    gate,
		metrics: reg,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout.Std(),
			WriteTimeout:      cfg.Server.WriteTimeout.Std(),
			ErrorLog:          zap.NewStdLog(log.Named("http")),
		},
	}, nil
}

// serve accepts connections on ln until ctx is canceled, then drains
// in-flight requests within the shutdown timeout.
func (s *service) serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	s.log.Info("server started",
		zap.String("addr", ln.Addr().String()),
		zap.String("version", Version),
		zap.Int("workers", s.gate.Size()),
		zap.Bool("development", s.cfg.Development),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down", zap.Int("in_flight", s.gate.InFlight()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
