//go:build integration

package md2img

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

// Requires Chrome and network access to the page CDN.
func TestRenderer_Integration(t *testing.T) {
	r, err := NewRenderer(WithStageTimeout(45 * time.Second))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	result, err := r.Render(ctx, Input{
		Markdown: "# Integration\n\nRendered by a real browser.",
		Header:   "header",
		Footer:   "footer",
	})
	if err != nil {
		t.Fatalf("Render() error = %v (kind %s)", err, KindOf(err))
	}

	if !result.Dimensions.Valid() {
		t.Errorf("Dimensions = %+v, want positive", result.Dimensions)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(result.ImageData, prefix) {
		t.Fatalf("ImageData prefix = %.40q", result.ImageData)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(result.ImageData, prefix))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if !strings.HasPrefix(string(raw), "\x89PNG") {
		t.Error("payload is not a PNG")
	}
}

func TestRenderer_Integration_EmptyMarkdownNeedsNoBrowser(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(context.Background(), Input{}); KindOf(err) != KindValidation {
		t.Errorf("KindOf() = %s, want %s", KindOf(err), KindValidation)
	}
}

func TestRenderer_Integration_ComponentUnavailable(t *testing.T) {
	// Nothing listens on port 1, so the component script never loads.
	assets := DefaultPageAssets()
	assets.ComponentScriptURL = "http://127.0.0.1:1/markdown-to-image.js"

	r, err := NewRenderer(WithPageAssets(assets), WithStageTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err = r.Render(ctx, Input{Markdown: "# Never shown"})
	if got := KindOf(err); got != KindComponentLoadTimeout {
		t.Fatalf("KindOf() = %s, want %s (err = %v)", got, KindComponentLoadTimeout, err)
	}
	var re *RenderError
	if !errors.As(err, &re) || re.Stage != StageLibraryReady {
		t.Errorf("failed stage = %v, want %s", err, StageLibraryReady)
	}
}
