package md2img

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/alnah/go-md2img/internal/process"
)

// Page scripts. Arguments are passed through CDP, never interpolated.
const (
	jsReadyState = `() => document.readyState !== "loading"`
	jsHasGlobal  = `(name) => typeof window[name] !== "undefined"`
	jsMeasure    = `(sel) => {
		const el = document.querySelector(sel);
		if (!el) return null;
		return { width: el.offsetWidth, height: el.offsetHeight };
	}`
	jsTakeSlot = `(slot) => {
		const v = window[slot];
		window[slot] = null;
		return typeof v === "string" ? v : null;
	}`
)

// RodLauncher starts one Chromium per Open using go-rod.
// Rod downloads Chromium on first run if none is found.
type RodLauncher struct {
	opts   BrowserOptions
	logger *zap.Logger

	// launch starts the process and returns its control URL; replaced in tests.
	launch func(*launcher.Launcher) (string, error)
}

// NewRodLauncher creates a RodLauncher. A nil logger discards output.
func NewRodLauncher(opts BrowserOptions, logger *zap.Logger) *RodLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodLauncher{
		opts:   opts.withDefaults(),
		logger: logger,
		launch: (*launcher.Launcher).Launch,
	}
}

// Open launches a browser, connects to it and opens a blank page.
func (l *RodLauncher) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lc := l.newLauncher()
	u, err := l.launch(lc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	s := &rodSession{
		launcher: lc,
		pid:      lc.PID(),
		opts:     l.opts,
		logger:   l.logger,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	// Chrome startup can outlast the caller.
	if err := ctx.Err(); err != nil {
		_ = s.Close()
		return nil, err
	}

	browser := rod.New().ControlURL(u).NoDefaultDevice().Context(s.ctx)
	if err := browser.Connect(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	s.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s.page = page

	if err := ctx.Err(); err != nil {
		_ = s.Close()
		return nil, err
	}

	go s.page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		s.logger.Debug("browser console",
			zap.String("type", string(e.Type)),
			zap.String("text", stringifyConsoleArgs(e.Args)),
		)
	})()

	s.logger.Debug("browser session opened", zap.Int("pid", s.pid))
	return s, nil
}

// newLauncher configures the browser process from options and environment.
func (l *RodLauncher) newLauncher() *launcher.Launcher {
	lc := launcher.New().
		Headless(l.opts.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", l.opts.WindowWidth, l.opts.WindowHeight))

	// Pre-installed browser for Docker/containerized environments
	bin := l.opts.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		lc = lc.Bin(bin)
	}

	// Sandbox is unavailable in CI and most containers
	if l.opts.NoSandbox ||
		os.Getenv("ROD_NO_SANDBOX") == "1" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("ROD_BROWSER_BIN") != "" {
		lc = lc.NoSandbox(true)
	}

	return lc
}

// rodSession implements Session on a single rod page.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	pid      int
	opts     BrowserOptions
	logger   *zap.Logger

	// ctx outlives individual operations; cancelled on Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	stops  []func() error
	closed bool

	closeOnce sync.Once
	closeErr  error
}

var _ Session = (*rodSession)(nil)

// scoped returns the page bound to ctx with the per-operation ceiling applied.
func (s *rodSession) scoped(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, nil, ErrSessionClosed
	}
	opCtx, cancel := context.WithTimeout(ctx, s.opts.OperationTimeout)
	return s.page.Context(opCtx), cancel, nil
}

func (s *rodSession) Load(ctx context.Context, html string) error {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := p.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := p.Wait(rod.Eval(jsReadyState)); err != nil {
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	return nil
}

func (s *rodSession) WaitGlobal(ctx context.Context, name string) error {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	return p.Wait(rod.Eval(jsHasGlobal, name))
}

func (s *rodSession) WaitVisible(ctx context.Context, selector string) error {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (s *rodSession) Measure(ctx context.Context, selector string) (Dimensions, error) {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return Dimensions{}, err
	}
	defer cancel()

	res, err := p.Eval(jsMeasure, selector)
	if err != nil {
		return Dimensions{}, err
	}
	return decodeDimensions(res.Value), nil
}

// decodeDimensions reads {width, height}; null yields zero Dimensions.
func decodeDimensions(v gson.JSON) Dimensions {
	if v.Nil() {
		return Dimensions{}
	}
	return Dimensions{
		Width:  v.Get("width").Int(),
		Height: v.Get("height").Int(),
	}
}

func (s *rodSession) Screenshot(ctx context.Context) ([]byte, error) {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	return p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// ArmCapture exposes the completion bridge on the session page so its
// binding survives the stage context that armed it.
func (s *rodSession) ArmCapture(ctx context.Context) (<-chan CaptureSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	signals := make(chan CaptureSignal, 1)
	stop, err := s.page.Expose(CaptureBridge, func(payload gson.JSON) (interface{}, error) {
		select {
		case signals <- decodeCaptureSignal(payload):
		default:
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: arming capture bridge: %v", ErrExportTrigger, err)
	}
	s.stops = append(s.stops, stop)
	return signals, nil
}

// decodeCaptureSignal reads {ok, error} from the bridge payload.
func decodeCaptureSignal(v gson.JSON) CaptureSignal {
	return CaptureSignal{
		OK:    v.Get("ok").Bool(),
		Error: v.Get("error").Str(),
	}
}

func (s *rodSession) Click(ctx context.Context, selector string) error {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	el, err := p.Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *rodSession) TakeResult(ctx context.Context) (string, error) {
	p, cancel, err := s.scoped(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	res, err := p.Eval(jsTakeSlot, ResultSlot)
	if err != nil {
		return "", err
	}
	if res.Value.Nil() {
		return "", nil
	}
	return res.Value.Str(), nil
}

// Close releases the page, the browser and the process tree.
// Every step runs even when an earlier one fails.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		stops := s.stops
		s.stops = nil
		s.mu.Unlock()

		var errs []error
		for _, stop := range stops {
			if err := stop(); err != nil {
				errs = append(errs, fmt.Errorf("stopping bridge: %w", err))
			}
		}
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing page: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing browser: %w", err))
			}
		}
		if s.cancel != nil {
			s.cancel()
		}

		// Chrome helpers can outlive the main process.
		if s.pid > 0 {
			process.KillProcessGroup(s.pid)
			s.launcher.Kill()
			s.launcher.Cleanup()
		}

		s.closeErr = errors.Join(errs...)
		s.logger.Debug("browser session closed", zap.Int("pid", s.pid), zap.Error(s.closeErr))
	})
	return s.closeErr
}

// stringifyConsoleArgs renders console arguments as one line.
func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}
