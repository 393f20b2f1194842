package md2img

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrFieldTooLong  = errors.New("field exceeds maximum length")
	ErrInvalidUTF8   = errors.New("field is not valid UTF-8")

	// Configuration errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Browser lifecycle errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrSessionClosed  = errors.New("browser session already closed")

	// Readiness errors, one per waiting stage.
	ErrComponentLoadTimeout = errors.New("rendering component did not load in time")
	ErrElementNotFound      = errors.New("render root element not found")
	ErrGeometryUnavailable  = errors.New("render root element has no measurable size")
	ErrExportTrigger        = errors.New("failed to trigger export")
	ErrCaptureTimeout       = errors.New("image capture did not complete in time")

	// Capture result errors.
	ErrCaptureFailed  = errors.New("image capture failed in page")
	ErrInvalidPayload = errors.New("image payload is not a PNG data URI")

	// Admission and protocol errors.
	ErrOverloaded     = errors.New("render capacity exhausted")
	ErrStageOrder     = errors.New("invalid stage transition")
	ErrDocumentRender = errors.New("document template rendering failed")
)
