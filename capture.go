package md2img

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// pngDataURIPrefix is the only payload shape accepted from the page.
const pngDataURIPrefix = "data:image/png"

// exportAndCapture triggers the in-page export and returns the captured image.
func (r *Renderer) exportAndCapture(ctx context.Context, sess Session, m *stageMachine, log *zap.Logger) (*Result, error) {
	var (
		dims    Dimensions
		signals <-chan CaptureSignal
	)
	if err := r.runStage(ctx, m, log, StageExportTriggered, func(ctx context.Context) error {
		var err error
		dims, signals, err = triggerExport(ctx, sess)
		return err
	}); err != nil {
		return nil, err
	}

	var data string
	if err := r.runStage(ctx, m, log, StageImageCaptured, func(ctx context.Context) error {
		var err error
		data, err = awaitCapture(ctx, sess, signals)
		return err
	}); err != nil {
		return nil, err
	}

	return &Result{ImageData: data, Dimensions: dims}, nil
}

// triggerExport measures the render root, arms the completion bridge and
// clicks the export button, in that order. Nothing is clicked when the
// root has no size.
func triggerExport(ctx context.Context, sess Session) (Dimensions, <-chan CaptureSignal, error) {
	dims, err := sess.Measure(ctx, RootSelector)
	if err != nil {
		return dims, nil, fmt.Errorf("measuring render root: %w", err)
	}
	if !dims.Valid() {
		return dims, nil, fmt.Errorf("%w: %dx%d", ErrGeometryUnavailable, dims.Width, dims.Height)
	}

	signals, err := sess.ArmCapture(ctx)
	if err != nil {
		return dims, nil, err
	}

	if err := sess.Click(ctx, ExportButton); err != nil {
		return dims, nil, fmt.Errorf("%w: %v", ErrExportTrigger, err)
	}
	return dims, signals, nil
}

// awaitCapture waits for the bridge to fire, then takes the payload out of
// the result slot.
func awaitCapture(ctx context.Context, sess Session, signals <-chan CaptureSignal) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case sig := <-signals:
		if !sig.OK {
			return "", fmt.Errorf("%w: %s", ErrCaptureFailed, sig.Error)
		}
	}

	data, err := sess.TakeResult(ctx)
	if err != nil {
		return "", fmt.Errorf("reading result slot: %w", err)
	}
	if !strings.HasPrefix(data, pngDataURIPrefix) {
		return "", fmt.Errorf("%w: %d bytes", ErrInvalidPayload, len(data))
	}
	return data, nil
}
