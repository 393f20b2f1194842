package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2img"
	"github.com/alnah/go-md2img/internal/fileutil"
	"github.com/alnah/go-md2img/internal/logger"
)

// Sentinel errors for the render command.
var (
	ErrNoInput          = errors.New("no input file specified")
	ErrReadMarkdown     = errors.New("failed to read markdown")
	ErrWriteImage       = errors.New("failed to write image")
	ErrInvalidExtension = errors.New("input must be a .md or .markdown file")
)

// stdinArg selects standard input as the markdown source.
const stdinArg = "-"

// maxStdinSize caps markdown read from stdin.
const maxStdinSize = 10 << 20

// runRender renders one markdown file to a PNG file.
func runRender(ctx context.Context, args []string, env *Environment) error {
	f, fs, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: usage: md2img render <file.md|->", ErrNoInput)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: render takes one input, got %d", ErrUsage, len(positional))
	}
	input := positional[0]

	cfg, err := resolveConfig(f.common.config, env)
	if err != nil {
		return err
	}
	applyBrowserFlags(fs, &f.browser, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	outPath, err := resolveOutputPath(input, f.output)
	if err != nil {
		return err
	}

	markdown, err := readMarkdown(input, env.Stdin)
	if err != nil {
		return err
	}

	log := newCLILogger(env.Stderr, f.common)
	defer func() { _ = log.Sync() }()

	renderer, _, err := newRenderer(cfg, log, env, nil)
	if err != nil {
		return err
	}

	result, err := renderer.Render(ctx, md2img.Input{
		Markdown: markdown,
		Theme:    f.theme,
		Size:     f.size,
		Header:   f.header,
		Footer:   f.footer,
	})
	if err != nil {
		return err
	}

	png, err := decodeDataURI(result.ImageData)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(outPath, png); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteImage, outPath, err)
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "%s (%dx%d, %s)\n", outPath,
			result.Dimensions.Width, result.Dimensions.Height,
			result.Elapsed.Round(time.Millisecond))
	}
	return nil
}

// readMarkdown reads the input file, or stdin for "-".
func readMarkdown(input string, stdin io.Reader) (string, error) {
	if input == stdinArg {
		data, err := io.ReadAll(io.LimitReader(stdin, maxStdinSize+1))
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadMarkdown, err)
		}
		if len(data) > maxStdinSize {
			return "", fmt.Errorf("%w: stdin exceeds %d bytes", ErrReadMarkdown, maxStdinSize)
		}
		return string(data), nil
	}

	if !isMarkdownFile(input) {
		return "", fmt.Errorf("%w: %s", ErrInvalidExtension, input)
	}
	data, err := os.ReadFile(input) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	return string(data), nil
}

func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// resolveOutputPath picks the PNG path: explicit output wins, otherwise the
// input name with a .png extension. Stdin input requires an explicit output.
func resolveOutputPath(input, output string) (string, error) {
	if output != "" {
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			if input == stdinArg {
				return filepath.Join(output, "output.png"), nil
			}
			base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			return filepath.Join(output, base+".png"), nil
		}
		return output, nil
	}
	if input == stdinArg {
		return "", fmt.Errorf("%w: --output is required when reading stdin", ErrUsage)
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png", nil
}

// decodeDataURI extracts the PNG bytes from a base64 data URI.
func decodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, fmt.Errorf("%w: missing base64 marker", md2img.ErrInvalidPayload)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", md2img.ErrInvalidPayload, err)
	}
	return data, nil
}

// newCLILogger logs warnings to w; --verbose shows render stages and
// --quiet keeps only errors.
func newCLILogger(w io.Writer, f commonFlags) *zap.Logger {
	cfg := logger.DevelopmentConfig()
	cfg.Level = "warn"
	switch {
	case f.quiet:
		cfg.Level = "error"
	case f.verbose:
		cfg.Level = "debug"
	}
	return logger.NewWithWriter(cfg, w)
}
