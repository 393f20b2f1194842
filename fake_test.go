package md2img

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// fakePNG derives a distinct PNG data URI from the loaded document.
func fakePNG(html string) string {
	sum := sha256.Sum256([]byte(html))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(sum[:])
}

// fakeSession implements Session without a browser.
// Zero value succeeds at every step.
type fakeSession struct {
	hang       Stage           // stage whose wait blocks until ctx is done
	block      <-chan struct{} // if set, Load waits for it to close
	dims       Dimensions      // zero value replaced by 600x800
	zeroDims   bool            // report a root without size
	signal     *CaptureSignal  // nil sends {OK: true}
	noSignal   bool            // never fire the bridge
	result     *string         // nil uses fakePNG(html)
	shot       []byte
	shotErr    error
	measureErr error
	openPanic  bool

	mu     sync.Mutex
	html   string
	calls  []string
	armed  chan CaptureSignal
	slot   string
	closes atomic.Int32
}

var _ Session = (*fakeSession)(nil)

func (s *fakeSession) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *fakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSession) wait(ctx context.Context, stage Stage) error {
	if s.hang == stage {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *fakeSession) Load(ctx context.Context, html string) error {
	s.record("load")
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.html = html
	s.mu.Unlock()
	return s.wait(ctx, StageContentLoaded)
}

func (s *fakeSession) WaitGlobal(ctx context.Context, name string) error {
	s.record("global:" + name)
	if s.openPanic {
		panic("component exploded")
	}
	return s.wait(ctx, StageLibraryReady)
}

func (s *fakeSession) WaitVisible(ctx context.Context, selector string) error {
	s.record("visible:" + selector)
	return s.wait(ctx, StageElementRendered)
}

func (s *fakeSession) Measure(ctx context.Context, selector string) (Dimensions, error) {
	s.record("measure:" + selector)
	if s.measureErr != nil {
		return Dimensions{}, s.measureErr
	}
	if s.zeroDims {
		return Dimensions{}, nil
	}
	if s.dims.Valid() {
		return s.dims, nil
	}
	return Dimensions{Width: 600, Height: 800}, nil
}

func (s *fakeSession) Screenshot(ctx context.Context) ([]byte, error) {
	s.record("screenshot")
	return s.shot, s.shotErr
}

func (s *fakeSession) ArmCapture(ctx context.Context) (<-chan CaptureSignal, error) {
	s.record("arm")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = make(chan CaptureSignal, 1)
	return s.armed, nil
}

func (s *fakeSession) Click(ctx context.Context, selector string) error {
	s.record("click:" + selector)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed == nil {
		return errors.New("clicked before bridge was armed")
	}
	if s.noSignal || s.hang == StageImageCaptured {
		return nil
	}

	if s.result != nil {
		s.slot = *s.result
	} else {
		s.slot = fakePNG(s.html)
	}
	sig := CaptureSignal{OK: true}
	if s.signal != nil {
		sig = *s.signal
	}
	armed := s.armed
	go func() {
		time.Sleep(time.Millisecond)
		armed <- sig
	}()
	return nil
}

func (s *fakeSession) TakeResult(ctx context.Context) (string, error) {
	s.record("take")
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.slot
	s.slot = ""
	return v, nil
}

func (s *fakeSession) Close() error {
	s.closes.Add(1)
	return nil
}

// fakeLauncher hands out sessions built by newSession.
type fakeLauncher struct {
	newSession func() *fakeSession
	openErr    error

	mu       sync.Mutex
	sessions []*fakeSession
	opens    atomic.Int32
}

var _ Launcher = (*fakeLauncher)(nil)

func (l *fakeLauncher) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.openErr != nil {
		return nil, l.openErr
	}
	l.opens.Add(1)

	s := &fakeSession{}
	if l.newSession != nil {
		s = l.newSession()
	}
	l.mu.Lock()
	l.sessions = append(l.sessions, s)
	l.mu.Unlock()
	return s, nil
}

func (l *fakeLauncher) Sessions() []*fakeSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeSession(nil), l.sessions...)
}

// totalCloses sums Close calls over every session handed out.
func (l *fakeLauncher) totalCloses() int {
	n := 0
	for _, s := range l.Sessions() {
		n += int(s.closes.Load())
	}
	return n
}

// recordingObserver counts lifecycle events.
type recordingObserver struct {
	mu       sync.Mutex
	opened   int
	closed   int
	stages   []Stage
	outcomes []FailureKind
	waits    int
}

func (o *recordingObserver) AdmissionWaited(time.Duration) {
	o.mu.Lock()
	o.waits++
	o.mu.Unlock()
}

func (o *recordingObserver) SessionOpened() {
	o.mu.Lock()
	o.opened++
	o.mu.Unlock()
}

func (o *recordingObserver) SessionClosed() {
	o.mu.Lock()
	o.closed++
	o.mu.Unlock()
}

func (o *recordingObserver) StageCompleted(stage Stage, _ time.Duration) {
	o.mu.Lock()
	o.stages = append(o.stages, stage)
	o.mu.Unlock()
}

func (o *recordingObserver) RenderFinished(kind FailureKind, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, kind)
	o.mu.Unlock()
}
