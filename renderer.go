package md2img

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-md2img/internal/assets"
	"github.com/alnah/go-md2img/internal/fileutil"
	"github.com/alnah/go-md2img/internal/hints"
	"github.com/alnah/go-md2img/internal/logger"
)

// DebugScreenshotName is the file written to the debug directory.
const DebugScreenshotName = "debug-screenshot.png"

// Renderer turns markdown into a PNG data URI by driving a browser.
// One browser session is opened per Render and closed before it returns.
// Safe for concurrent use.
type Renderer struct {
	cfg      rendererConfig
	launcher Launcher
	gate     *Gate
	builder  *DocumentBuilder
	logger   *zap.Logger
	observer Observer
}

// NewRenderer creates a Renderer with default configuration.
// Use options to customize behavior (e.g., WithStageTimeout, WithGate, WithLogger).
// Returns error if the page assets cannot be loaded or parsed.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		cfg: rendererConfig{
			stageTimeout: DefaultStageTimeout,
			browser:      DefaultBrowserOptions(),
			pixelRatio:   DefaultPixelRatio,
			pageAssets:   DefaultPageAssets(),
		},
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(r)
	}

	resolver, err := assets.NewAssetResolver(r.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	r.builder, err = NewDocumentBuilder(resolver, r.cfg.pageAssets, r.cfg.pixelRatio)
	if err != nil {
		return nil, fmt.Errorf("initializing document builder: %w", err)
	}

	if r.launcher == nil {
		r.launcher = NewRodLauncher(r.cfg.browser, r.logger.Named("browser"))
	}
	if r.gate == nil {
		r.gate = NewGate(GateOptions{MaxQueue: DefaultMaxQueue})
	}

	return r, nil
}

// Gate returns the admission gate used by the renderer.
func (r *Renderer) Gate() *Gate {
	return r.gate
}

// Render converts one input into a PNG data URI.
// Failures are returned as *RenderError; use KindOf to classify them.
// Invalid input is rejected before any browser is started.
func (r *Renderer) Render(ctx context.Context, in Input) (result *Result, err error) {
	start := time.Now()
	log := r.requestLogger(ctx)
	var m stageMachine

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = newRenderError(m.pending(), fmt.Errorf("internal error: %v", rec))
		}
		r.report(log, err, time.Since(start))
	}()

	if err := in.Validate(); err != nil {
		return nil, newRenderError(StagePending, err)
	}

	html, err := r.builder.Build(in)
	if err != nil {
		return nil, newRenderError(StagePending, err)
	}

	waitStart := time.Now()
	release, err := r.gate.Acquire(ctx)
	r.observer.AdmissionWaited(time.Since(waitStart))
	if err != nil {
		return nil, newRenderError(StagePending, err)
	}
	defer release()

	sess, err := r.launcher.Open(ctx)
	if err != nil {
		return nil, newRenderError(m.pending(), err)
	}
	opened := time.Now()
	r.observer.SessionOpened()
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("closing browser session", zap.Error(cerr))
		}
		r.observer.SessionClosed()
	}()

	if err := r.awaitReadiness(ctx, sess, &m, log, html); err != nil {
		return nil, err
	}

	r.debugScreenshot(ctx, sess, log)

	res, err := r.exportAndCapture(ctx, sess, &m, log)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(opened)
	return res, nil
}

// requestLogger tags the renderer logger with the caller's request ID.
func (r *Renderer) requestLogger(ctx context.Context) *zap.Logger {
	if id := logger.GetRequestID(ctx); id != "" {
		return r.logger.With(zap.String("request_id", id))
	}
	return r.logger
}

// debugScreenshot saves the viewport once the poster is visible.
// Failures are logged and never fail the render.
func (r *Renderer) debugScreenshot(ctx context.Context, sess Session, log *zap.Logger) {
	if r.cfg.debugDir == "" {
		return
	}

	shotCtx, cancel := context.WithTimeout(ctx, r.cfg.stageTimeout)
	defer cancel()

	png, err := sess.Screenshot(shotCtx)
	if err == nil {
		err = fileutil.EnsureDir(r.cfg.debugDir)
	}
	if err == nil {
		err = fileutil.WriteFileAtomic(filepath.Join(r.cfg.debugDir, DebugScreenshotName), png)
	}
	if err != nil {
		log.Warn("debug screenshot failed", zap.String("dir", r.cfg.debugDir), zap.Error(err))
	}
}

// report logs the outcome and notifies the observer.
func (r *Renderer) report(log *zap.Logger, err error, took time.Duration) {
	kind := KindOf(err)
	r.observer.RenderFinished(kind, took)

	if err == nil {
		log.Info("render completed", zap.Duration("elapsed", took))
		return
	}

	var re *RenderError
	if !errors.As(err, &re) {
		re = newRenderError(StagePending, err)
	}

	level := zapcore.ErrorLevel
	if kind == KindValidation || kind == KindOverloaded {
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.Stringer("stage", re.Stage),
		zap.String("kind", string(kind)),
		zap.Duration("elapsed", took),
		zap.Error(re.Err),
	}
	if hint := hintFor(re); hint != "" {
		fields = append(fields, zap.String("hint", hint))
	}
	log.Log(level, "render failed", fields...)
}

// hintFor returns an operator hint for the failure, without the prefix.
func hintFor(re *RenderError) string {
	var hint string
	switch {
	case errors.Is(re.Err, ErrBrowserConnect):
		hint = hints.ForBrowserLaunch()
	case re.Kind == KindComponentLoadTimeout:
		hint = hints.ForComponentLoad()
	case re.Kind == KindCaptureTimeout:
		hint = hints.ForCaptureTimeout()
	case re.Kind == KindOverloaded:
		hint = hints.ForOverloaded()
	}
	return strings.TrimPrefix(hint, "\n  hint: ")
}
