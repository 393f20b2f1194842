package md2img

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	stageTimeout time.Duration
	browser      BrowserOptions
	debugDir     string
	pixelRatio   float64
	pageAssets   PageAssets
	assetPath    string
}

// DefaultStageTimeout bounds each readiness stage.
const DefaultStageTimeout = 30 * time.Second

// WithStageTimeout sets the time allowed for each stage of the render.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithStageTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2img: WithStageTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.stageTimeout = d
	}
}

// WithLauncher replaces the browser launcher, typically with a fake in tests.
func WithLauncher(l Launcher) Option {
	return func(r *Renderer) {
		r.launcher = l
	}
}

// WithBrowserOptions configures the default rod launcher.
// Ignored when WithLauncher is also given.
func WithBrowserOptions(opts BrowserOptions) Option {
	return func(r *Renderer) {
		r.cfg.browser = opts
	}
}

// WithGate shares an admission gate across renderers.
func WithGate(g *Gate) Option {
	return func(r *Renderer) {
		r.gate = g
	}
}

// WithDebugDir enables a viewport screenshot per render, written to
// dir/debug-screenshot.png. Empty disables it.
func WithDebugDir(dir string) Option {
	return func(r *Renderer) {
		r.cfg.debugDir = dir
	}
}

// WithPixelRatio sets the export scale factor.
// Panics if ratio <= 0.
func WithPixelRatio(ratio float64) Option {
	if ratio <= 0 {
		panic("md2img: WithPixelRatio ratio must be positive")
	}
	return func(r *Renderer) {
		r.cfg.pixelRatio = ratio
	}
}

// WithPageAssets overrides the script and stylesheet URLs loaded by the page.
func WithPageAssets(a PageAssets) Option {
	return func(r *Renderer) {
		r.cfg.pageAssets = a
	}
}

// WithAssetPath loads the page template and stylesheet from dir, falling back
// to the embedded ones for files it does not contain.
func WithAssetPath(dir string) Option {
	return func(r *Renderer) {
		r.cfg.assetPath = dir
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver receives lifecycle events, e.g. for metrics.
func WithObserver(o Observer) Option {
	return func(r *Renderer) {
		if o != nil {
			r.observer = o
		}
	}
}
