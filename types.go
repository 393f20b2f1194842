package md2img

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Defaults applied to empty Input fields.
const (
	DefaultTheme = "SpringGradientWave"
	DefaultSize  = "mobile"
)

// Field length limits. The component catalog is external, so theme and size
// are only bounded, not checked against a list.
const (
	MaxThemeLength  = 64
	MaxSizeLength   = 64
	MaxHeaderLength = 500
	MaxFooterLength = 500
)

// Input is one render request.
type Input struct {
	Markdown string // Required, handed verbatim to the in-page component
	Theme    string // Component theme name (default: DefaultTheme)
	Size     string // Component size preset (default: DefaultSize)
	Header   string // Optional poster header text
	Footer   string // Optional poster footer text
}

// withDefaults returns a copy of the input with empty theme and size filled in.
func (in Input) withDefaults() Input {
	if in.Theme == "" {
		in.Theme = DefaultTheme
	}
	if in.Size == "" {
		in.Size = DefaultSize
	}
	return in
}

// Validate checks that the input can be rendered.
// Markdown content itself is never inspected beyond emptiness and encoding.
func (in Input) Validate() error {
	if in.Markdown == "" {
		return ErrEmptyMarkdown
	}
	for _, f := range []struct{ name, value string }{
		{"markdown", in.Markdown},
		{"theme", in.Theme},
		{"size", in.Size},
		{"header", in.Header},
		{"footer", in.Footer},
	} {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s", ErrInvalidUTF8, f.name)
		}
	}
	if err := validateFieldLength("theme", in.Theme, MaxThemeLength); err != nil {
		return err
	}
	if err := validateFieldLength("size", in.Size, MaxSizeLength); err != nil {
		return err
	}
	if err := validateFieldLength("header", in.Header, MaxHeaderLength); err != nil {
		return err
	}
	return validateFieldLength("footer", in.Footer, MaxFooterLength)
}

func validateFieldLength(field, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, field, len(value), maxLength)
	}
	return nil
}

// Dimensions is the layout size of the rendered poster in CSS pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both sides are positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Result is a successful render.
type Result struct {
	ImageData  string        // data:image/png;base64,...
	Dimensions Dimensions    // measured before export, same render pass
	Elapsed    time.Duration // wall time from session open to capture
}
