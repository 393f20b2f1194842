package md2img

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-md2img/internal/assets"
)

// Page contract shared by the document template and the automation session.
const (
	ComponentNamespace = "MarkdownToImage"
	RootSelector       = "div.markdown-to-image-root"
	ExportButton       = "#exportButton"
	ResultSlot         = "__md2imgResult"
	CaptureBridge      = "__md2imgCaptureDone"
)

// DefaultPixelRatio is the export scale factor.
const DefaultPixelRatio = 2

// PageAssets lists the third-party scripts and stylesheet loaded by the page.
type PageAssets struct {
	ReactURL           string `yaml:"react"`
	ReactDOMURL        string `yaml:"reactDom"`
	CaptureLibURL      string `yaml:"captureLib"`
	ComponentScriptURL string `yaml:"componentScript"`
	ComponentStyleURL  string `yaml:"componentStyle"`
}

// DefaultPageAssets returns the pinned CDN locations of the page dependencies.
func DefaultPageAssets() PageAssets {
	return PageAssets{
		ReactURL:           "https://unpkg.com/react@18/umd/react.production.min.js",
		ReactDOMURL:        "https://unpkg.com/react-dom@18/umd/react-dom.production.min.js",
		CaptureLibURL:      "https://unpkg.com/html-to-image@1.11.11/dist/html-to-image.js",
		ComponentScriptURL: "https://unpkg.com/markdown-to-image@0.0.12/dist/markdown-to-image.js",
		ComponentStyleURL:  "https://unpkg.com/markdown-to-image@0.0.12/dist/style.css",
	}
}

// withDefaults fills empty URLs from DefaultPageAssets.
func (a PageAssets) withDefaults() PageAssets {
	d := DefaultPageAssets()
	if a.ReactURL == "" {
		a.ReactURL = d.ReactURL
	}
	if a.ReactDOMURL == "" {
		a.ReactDOMURL = d.ReactDOMURL
	}
	if a.CaptureLibURL == "" {
		a.CaptureLibURL = d.CaptureLibURL
	}
	if a.ComponentScriptURL == "" {
		a.ComponentScriptURL = d.ComponentScriptURL
	}
	if a.ComponentStyleURL == "" {
		a.ComponentStyleURL = d.ComponentStyleURL
	}
	return a
}

// pageData feeds the page template. String fields land in a script
// context, where html/template emits them as quoted JS literals.
type pageData struct {
	Assets       PageAssets
	Style        template.CSS
	Markdown     string
	Theme        string
	Size         string
	Header       string
	Footer       string
	PixelRatio   float64
	Namespace    string
	RootSelector string
	ResultSlot   string
	Bridge       string
}

// DocumentBuilder synthesizes the HTML page hosting the rendering component.
type DocumentBuilder struct {
	tmpl       *template.Template
	style      template.CSS
	assets     PageAssets
	pixelRatio float64
}

// NewDocumentBuilder parses the page template and stylesheet from loader.
// A non-positive pixelRatio selects DefaultPixelRatio.
func NewDocumentBuilder(loader assets.AssetLoader, pageAssets PageAssets, pixelRatio float64) (*DocumentBuilder, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	if pixelRatio <= 0 {
		pixelRatio = DefaultPixelRatio
	}

	src, err := loader.LoadTemplate(assets.PageTemplateName)
	if err != nil {
		return nil, fmt.Errorf("loading page template: %w", err)
	}
	tmpl, err := template.New(assets.PageTemplateName).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing page template: %v", ErrDocumentRender, err)
	}

	css, err := loader.LoadStyle(assets.PageStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading page style: %w", err)
	}

	return &DocumentBuilder{
		tmpl: tmpl,
		// #nosec G203 -- stylesheet comes from the operator's asset directory, closing tags escaped
		style:      template.CSS(sanitizeCSS(css)),
		assets:     pageAssets.withDefaults(),
		pixelRatio: pixelRatio,
	}, nil
}

// Build returns the complete HTML document for one render.
// Markdown, header and footer reach the page as inert string data.
func (b *DocumentBuilder) Build(in Input) (string, error) {
	in = in.withDefaults()

	data := pageData{
		Assets:       b.assets,
		Style:        b.style,
		Markdown:     in.Markdown,
		Theme:        in.Theme,
		Size:         in.Size,
		Header:       in.Header,
		Footer:       in.Footer,
		PixelRatio:   b.pixelRatio,
		Namespace:    ComponentNamespace,
		RootSelector: RootSelector,
		ResultSlot:   ResultSlot,
		Bridge:       CaptureBridge,
	}

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return sb.String(), nil
}

// sanitizeCSS escapes sequences that could close the <style> block early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
