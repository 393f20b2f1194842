package md2img

import (
	"context"
	"time"
)

// CaptureSignal is the in-page report that an export finished.
type CaptureSignal struct {
	OK    bool
	Error string
}

// Session is one browser process with one page, used for a single render.
// Every blocking method honors ctx. Close is idempotent.
type Session interface {
	// Load replaces the page content and waits until the DOM is parsed.
	Load(ctx context.Context, html string) error

	// WaitGlobal blocks until window[name] is defined.
	WaitGlobal(ctx context.Context, name string) error

	// WaitVisible blocks until an element matching selector exists and is visible.
	WaitVisible(ctx context.Context, selector string) error

	// Measure returns the layout size of the first element matching selector.
	// A missing element yields zero Dimensions and no error.
	Measure(ctx context.Context, selector string) (Dimensions, error)

	// Screenshot captures the viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// ArmCapture installs the completion bridge and returns a channel that
	// receives at most one CaptureSignal. Must be called before Click.
	ArmCapture(ctx context.Context) (<-chan CaptureSignal, error)

	// Click dispatches a left click on the element matching selector.
	Click(ctx context.Context, selector string) error

	// TakeResult reads the result slot and clears it.
	// An empty slot yields "" and no error.
	TakeResult(ctx context.Context) (string, error)

	// Close tears the browser down. Safe to call more than once.
	Close() error
}

// Launcher opens a fresh Session per render.
type Launcher interface {
	Open(ctx context.Context) (Session, error)
}

// Browser defaults.
const (
	DefaultWindowWidth      = 1280
	DefaultWindowHeight     = 1024
	DefaultOperationTimeout = 30 * time.Second
)

// BrowserOptions configures the browser process launched per render.
type BrowserOptions struct {
	Bin              string        // browser executable; empty uses ROD_BROWSER_BIN or rod's lookup
	Headless         bool          // false shows the window for debugging
	NoSandbox        bool          // required in most containers
	WindowWidth      int           // pixels
	WindowHeight     int           // pixels
	OperationTimeout time.Duration // ceiling for any single browser call
}

// DefaultBrowserOptions returns headless options with a 1280x1024 window.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Headless:         true,
		WindowWidth:      DefaultWindowWidth,
		WindowHeight:     DefaultWindowHeight,
		OperationTimeout: DefaultOperationTimeout,
	}
}

// withDefaults fills zero sizes and timeouts.
func (o BrowserOptions) withDefaults() BrowserOptions {
	if o.WindowWidth <= 0 {
		o.WindowWidth = DefaultWindowWidth
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = DefaultWindowHeight
	}
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = DefaultOperationTimeout
	}
	return o
}
