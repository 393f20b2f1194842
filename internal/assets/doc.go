// Package assets provides the page template and stylesheet used to synthesize render documents.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem
//	    ├── FilesystemLoader  - loads from an override directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// The embedded set holds one template ("page") and one stylesheet ("page").
// The template is parsed with html/template by the caller; it must keep the
// #status, #root and #exportButton elements and the bootstrap script.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── page.css
//	└── templates/
//	    └── page.html
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks, verifies paths stay within basePath, and refuses files
// larger than MaxAssetSize.
package assets
