// Package md2img renders Markdown to a PNG image using headless Chrome.
//
// # Quick Start
//
// Create a renderer and render markdown:
//
//	r, err := md2img.NewRenderer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := r.Render(ctx, md2img.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Theme:    "SpringGradientWave",
//	})
//	if err != nil {
//	    log.Fatal(md2img.KindOf(err), err)
//	}
//	fmt.Println(result.Dimensions.Width, result.Dimensions.Height)
//
// result.ImageData is a data URI ("data:image/png;base64,...").
//
// # Render Protocol
//
// The markdown is never parsed in Go. It is embedded as an inert string in
// a synthesized HTML page that loads React, the markdown-to-image component
// and html-to-image, and the page does the layout. Each render then walks
// these stages, each bounded by its own timeout:
//
//  1. content_loaded: the page document is parsed
//  2. library_ready: window.MarkdownToImage is defined
//  3. element_rendered: div.markdown-to-image-root is visible
//  4. export_triggered: root measured, completion bridge armed, export button clicked
//  5. image_captured: the page reported completion and the PNG data URI was read
//
// A timeout in stage 2, 3 or 5 yields a distinct FailureKind
// (ComponentLoadTimeout, ElementNotFound, CaptureTimeout). A root with no
// size yields GeometryUnavailable before anything is clicked.
//
// # Sessions and Admission
//
// Every Render launches its own browser and closes it before returning,
// whatever the outcome. A Gate bounds how many browsers run at once; when it
// is full, renders queue for a bounded time or fail with Overloaded.
//
//	gate := md2img.NewGate(md2img.GateOptions{Size: 4, MaxQueue: 16})
//	r, err := md2img.NewRenderer(
//	    md2img.WithGate(gate),
//	    md2img.WithStageTimeout(20 * time.Second),
//	    md2img.WithLogger(zapLogger),
//	)
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library downloads a managed
// Chromium on first run (~/.cache/rod/browser/). The page loads its scripts
// from a CDN unless WithPageAssets points elsewhere.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package md2img
