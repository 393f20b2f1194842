package md2img

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, ""},
		{"empty markdown", ErrEmptyMarkdown, KindValidation},
		{"field too long", fmt.Errorf("%w: theme", ErrFieldTooLong), KindValidation},
		{"component", fmt.Errorf("%w: x", ErrComponentLoadTimeout), KindComponentLoadTimeout},
		{"element", ErrElementNotFound, KindElementNotFound},
		{"geometry", ErrGeometryUnavailable, KindGeometryUnavailable},
		{"capture timeout", ErrCaptureTimeout, KindCaptureTimeout},
		{"overloaded", ErrOverloaded, KindOverloaded},
		{"capture failed", ErrCaptureFailed, KindUnexpectedFault},
		{"page load", ErrPageLoad, KindUnexpectedFault},
		{"canceled", context.Canceled, KindUnexpectedFault},
		{"unknown", errors.New("boom"), KindUnexpectedFault},
		{"render error keeps kind", &RenderError{Kind: KindCaptureTimeout, Err: errors.New("x")}, KindCaptureTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestRenderError_Message(t *testing.T) {
	t.Parallel()

	kinds := []error{
		ErrEmptyMarkdown,
		ErrComponentLoadTimeout,
		ErrElementNotFound,
		ErrGeometryUnavailable,
		ErrCaptureTimeout,
		ErrOverloaded,
		errors.New("something odd"),
	}

	seen := make(map[string]bool)
	for _, err := range kinds {
		msg := newRenderError(StageLibraryReady, err).Message()
		if msg == "" {
			t.Errorf("Message() empty for %v", err)
		}
		if seen[msg] {
			t.Errorf("Message() %q reused across kinds", msg)
		}
		seen[msg] = true
	}
}

func TestRenderError_MessageHidesInternals(t *testing.T) {
	t.Parallel()

	re := newRenderError(StageContentLoaded, errors.New("ws://127.0.0.1:9222 refused"))
	if strings.Contains(re.Message(), "127.0.0.1") {
		t.Errorf("Message() leaks cause: %q", re.Message())
	}
}

func TestRenderError_MessageNamesLongField(t *testing.T) {
	t.Parallel()

	err := Input{Markdown: "x", Header: strings.Repeat("h", MaxHeaderLength+1)}.Validate()
	re := newRenderError(StagePending, err)
	if !strings.Contains(re.Message(), "header") {
		t.Errorf("Message() = %q, want it to name the field", re.Message())
	}
}

func TestRenderError_MessageNamesInvalidEncoding(t *testing.T) {
	t.Parallel()

	err := Input{Markdown: "ok", Header: "\xff"}.Validate()
	re := newRenderError(StagePending, err)
	if re.Kind != KindValidation {
		t.Fatalf("Kind = %s, want %s", re.Kind, KindValidation)
	}
	if msg := re.Message(); !strings.Contains(msg, "UTF-8") || !strings.Contains(msg, "header") {
		t.Errorf("Message() = %q, want it to name the encoding and the field", msg)
	}
}

func TestRenderError_Unwrap(t *testing.T) {
	t.Parallel()

	re := newRenderError(StageImageCaptured, fmt.Errorf("%w: slow", ErrCaptureTimeout))
	var err error = re
	if !errors.Is(err, ErrCaptureTimeout) {
		t.Error("errors.Is should see the wrapped sentinel")
	}
	if !strings.Contains(re.Error(), "image_captured") {
		t.Errorf("Error() = %q, want stage name", re.Error())
	}
}

func TestRenderError_Trace(t *testing.T) {
	t.Parallel()

	re := newRenderError(StageElementRendered, ErrElementNotFound)
	trace := re.Trace()
	if !strings.Contains(trace, ErrElementNotFound.Error()) {
		t.Errorf("Trace() missing cause: %q", trace)
	}
	if !strings.Contains(trace, "newRenderError") {
		t.Errorf("Trace() missing stack frames: %q", trace)
	}
}
