package main

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/alnah/go-md2img"
	"github.com/alnah/go-md2img/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	renderErr := func(kind md2img.FailureKind) error {
		var err error
		switch kind {
		case md2img.KindValidation:
			err = md2img.ErrEmptyMarkdown
		case md2img.KindComponentLoadTimeout:
			err = md2img.ErrComponentLoadTimeout
		case md2img.KindCaptureTimeout:
			err = md2img.ErrCaptureTimeout
		default:
			err = errors.New("boom")
		}
		return &md2img.RenderError{Kind: kind, Err: err}
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", fmt.Errorf("%w: bad flag", ErrUsage), ExitUsage},
		{"no input", ErrNoInput, ExitUsage},
		{"bad extension", fmt.Errorf("%w: x.txt", ErrInvalidExtension), ExitUsage},
		{"config not found", fmt.Errorf("wrap: %w", config.ErrConfigNotFound), ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"asset path", md2img.ErrInvalidAssetPath, ExitUsage},
		{"validation", renderErr(md2img.KindValidation), ExitUsage},
		{"missing file", fmt.Errorf("%w: %w", ErrReadMarkdown, fs.ErrNotExist), ExitIO},
		{"write image", fmt.Errorf("%w: out.png", ErrWriteImage), ExitIO},
		{"permission", fs.ErrPermission, ExitIO},
		{"browser connect", fmt.Errorf("%w: no chrome", md2img.ErrBrowserConnect), ExitBrowser},
		{"component timeout", renderErr(md2img.KindComponentLoadTimeout), ExitBrowser},
		{"capture timeout", renderErr(md2img.KindCaptureTimeout), ExitBrowser},
		{"unexpected fault", renderErr(md2img.KindUnexpectedFault), ExitGeneral},
		{"plain error", errors.New("boom"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
