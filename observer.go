package md2img

import "time"

// Observer receives render lifecycle events. Implementations must be safe
// for concurrent use; calls happen on the rendering goroutine.
type Observer interface {
	AdmissionWaited(d time.Duration)
	SessionOpened()
	SessionClosed()
	StageCompleted(stage Stage, d time.Duration)
	// RenderFinished reports the outcome; kind is empty on success.
	RenderFinished(kind FailureKind, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) AdmissionWaited(time.Duration) {}
func (nopObserver) SessionOpened() {}
func (nopObserver) SessionClosed() {}
func (nopObserver) StageCompleted(Stage, time.Duration) {}
func (nopObserver) RenderFinished(FailureKind, time.Duration) {}
