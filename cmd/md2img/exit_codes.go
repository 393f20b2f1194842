package main

import (
	"errors"
	"os"

	"github.com/alnah/go-md2img"
	"github.com/alnah/go-md2img/internal/config"
)

// Exit codes for the md2img command.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser launch or render stage failure
)

// exitCodeFor returns the exit code for an error.
// It relies on errors.Is, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, md2img.ErrInvalidAssetPath) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrInvalidExtension) ||
		md2img.KindOf(err) == md2img.KindValidation {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteImage) {
		return ExitIO
	}

	// Browser and render errors (exit 4)
	if errors.Is(err, md2img.ErrBrowserConnect) ||
		errors.Is(err, md2img.ErrPageCreate) ||
		errors.Is(err, md2img.ErrPageLoad) {
		return ExitBrowser
	}
	var re *md2img.RenderError
	if errors.As(err, &re) && re.Kind != md2img.KindUnexpectedFault {
		return ExitBrowser
	}

	return ExitGeneral
}
