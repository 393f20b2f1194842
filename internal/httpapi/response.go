package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-md2img"
)

// timestampLayout is ISO-8601 UTC with milliseconds.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// serverErrorLabel is the error field of every 500 response.
const serverErrorLabel = "server error"

type renderResponse struct {
	Success    bool              `json:"success"`
	ImageData  string            `json:"imageData"`
	Dimensions md2img.Dimensions `json:"dimensions"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func newRenderResponse(r *md2img.Result) renderResponse {
	return renderResponse{
		Success:    true,
		ImageData:  r.ImageData,
		Dimensions: r.Dimensions,
	}
}

// writeFailure maps a render failure to its status code and body.
func (h *handler) writeFailure(c *gin.Context, err error) {
	var re *md2img.RenderError
	if !errors.As(err, &re) {
		re = &md2img.RenderError{Kind: md2img.KindOf(err), Err: err}
	}

	switch re.Kind {
	case md2img.KindValidation:
		c.JSON(http.StatusBadRequest, errorResponse{Error: re.Message()})
	case md2img.KindOverloaded:
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(h.retryAfter.Seconds()))))
		c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error:   "service unavailable",
			Message: re.Message(),
			Kind:    string(re.Kind),
		})
	default:
		resp := errorResponse{
			Error:   serverErrorLabel,
			Message: re.Message(),
			Kind:    string(re.Kind),
		}
		if h.development {
			resp.Stack = re.Trace()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}
