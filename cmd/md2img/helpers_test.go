package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-md2img"
)

// pngMagic is the 8-byte PNG signature.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// stubSession completes every stage and returns pngMagic as the image.
type stubSession struct {
	payload string
	armed   chan md2img.CaptureSignal
}

var _ md2img.Session = (*stubSession)(nil)

func (s *stubSession) Load(context.Context, string) error        { return nil }
func (s *stubSession) WaitGlobal(context.Context, string) error  { return nil }
func (s *stubSession) WaitVisible(context.Context, string) error { return nil }
func (s *stubSession) Screenshot(context.Context) ([]byte, error) {
	return pngMagic, nil
}

func (s *stubSession) Measure(context.Context, string) (md2img.Dimensions, error) {
	return md2img.Dimensions{Width: 375, Height: 640}, nil
}

func (s *stubSession) ArmCapture(context.Context) (<-chan md2img.CaptureSignal, error) {
	s.armed = make(chan md2img.CaptureSignal, 1)
	return s.armed, nil
}

func (s *stubSession) Click(context.Context, string) error {
	s.armed <- md2img.CaptureSignal{OK: true}
	return nil
}

func (s *stubSession) TakeResult(context.Context) (string, error) {
	if s.payload != "" {
		return s.payload, nil
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngMagic), nil
}

func (s *stubSession) Close() error { return nil }

// stubLauncher opens stubSessions and counts them.
type stubLauncher struct {
	payload string
	openErr error

	mu    sync.Mutex
	opens int
}

func (l *stubLauncher) Open(context.Context) (md2img.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.openErr != nil {
		return nil, l.openErr
	}
	l.opens++
	return &stubSession{payload: l.payload}, nil
}

func (l *stubLauncher) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv returns an isolated Environment: env lookups only see vars plus a
// private MD2IMG_TEMP_DIR, stdin reads stdin, and the browser is a stubLauncher.
func testEnv(t *testing.T, vars map[string]string, stdin string) (*Environment, *syncBuffer, *syncBuffer) {
	t.Helper()
	// Keep config search away from the developer's real files.
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	if _, ok := vars["MD2IMG_TEMP_DIR"]; !ok {
		merged := map[string]string{"MD2IMG_TEMP_DIR": filepath.Join(t.TempDir(), "tmp")}
		for k, v := range vars {
			merged[k] = v
		}
		vars = merged
	}

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		Stdin:  strings.NewReader(stdin),
		Stdout: stdout,
		Stderr: stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		Launcher: &stubLauncher{},
	}
	return env, stdout, stderr
}
