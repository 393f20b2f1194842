package md2img

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// FailureKind classifies why a render did not produce an image.
type FailureKind string

const (
	KindValidation           FailureKind = "ValidationError"
	KindComponentLoadTimeout FailureKind = "ComponentLoadTimeout"
	KindElementNotFound      FailureKind = "ElementNotFound"
	KindGeometryUnavailable  FailureKind = "GeometryUnavailable"
	KindCaptureTimeout       FailureKind = "CaptureTimeout"
	KindOverloaded           FailureKind = "Overloaded"
	KindUnexpectedFault      FailureKind = "UnexpectedFault"
)

// Messages returned to clients, one per kind.
const (
	msgValidation           = "markdown content cannot be empty"
	msgComponentLoadTimeout = "the rendering component did not load in time"
	msgElementNotFound      = "the rendered poster element was not found on the page"
	msgGeometryUnavailable  = "the rendered poster element has no size"
	msgCaptureTimeout       = "image generation timed out"
	msgOverloaded           = "too many renders in progress, try again later"
	msgUnexpectedFault      = "an unexpected error occurred while rendering"
)

// KindOf maps an error to its failure kind.
// Unknown errors, including context cancellation, map to KindUnexpectedFault.
func KindOf(err error) FailureKind {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Kind
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyMarkdown), errors.Is(err, ErrFieldTooLong), errors.Is(err, ErrInvalidUTF8):
		return KindValidation
	case errors.Is(err, ErrComponentLoadTimeout):
		return KindComponentLoadTimeout
	case errors.Is(err, ErrElementNotFound):
		return KindElementNotFound
	case errors.Is(err, ErrGeometryUnavailable):
		return KindGeometryUnavailable
	case errors.Is(err, ErrCaptureTimeout):
		return KindCaptureTimeout
	case errors.Is(err, ErrOverloaded):
		return KindOverloaded
	default:
		return KindUnexpectedFault
	}
}

// RenderError is the failure outcome of a render.
type RenderError struct {
	Stage Stage       // stage the render was trying to reach
	Kind  FailureKind // classification
	Err   error       // underlying cause, carries a stack trace
}

// newRenderError classifies err and records a stack at the render boundary.
func newRenderError(stage Stage, err error) *RenderError {
	return &RenderError{
		Stage: stage,
		Kind:  KindOf(err),
		Err:   pkgerrors.WithStack(err),
	}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Message returns a human-readable description safe to show to clients.
// Validation messages include the offending field.
func (e *RenderError) Message() string {
	switch e.Kind {
	case KindValidation:
		if errors.Is(e.Err, ErrFieldTooLong) || errors.Is(e.Err, ErrInvalidUTF8) {
			return pkgerrors.Cause(e.Err).Error()
		}
		return msgValidation
	case KindComponentLoadTimeout:
		return msgComponentLoadTimeout
	case KindElementNotFound:
		return msgElementNotFound
	case KindGeometryUnavailable:
		return msgGeometryUnavailable
	case KindCaptureTimeout:
		return msgCaptureTimeout
	case KindOverloaded:
		return msgOverloaded
	default:
		if errors.Is(e.Err, context.Canceled) {
			return "render canceled"
		}
		return msgUnexpectedFault
	}
}

// Trace returns the error chain with the stack recorded at the render boundary.
func (e *RenderError) Trace() string {
	return fmt.Sprintf("%+v", e.Err)
}
