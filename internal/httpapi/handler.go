package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alnah/go-md2img"
	"github.com/alnah/go-md2img/internal/logger"
)

// Renderer turns markdown into an image.
type Renderer interface {
	Render(ctx context.Context, in md2img.Input) (*md2img.Result, error)
}

type handler struct {
	renderer    Renderer
	retryAfter  time.Duration
	development bool
	now         func() time.Time
}

// renderRequest is the JSON body of a render call.
type renderRequest struct {
	Markdown string `json:"markdown"`
	Theme    string `json:"theme"`
	Size     string `json:"size"`
	Header   string `json:"header"`
	Footer   string `json:"footer"`
}

func (h *handler) render(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		logger.GetGinLogger(c).Debug("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.renderer.Render(c.Request.Context(), md2img.Input{
		Markdown: req.Markdown,
		Theme:    req.Theme,
		Size:     req.Size,
		Header:   req.Header,
		Footer:   req.Footer,
	})
	if err != nil {
		_ = c.Error(err)
		h.writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, newRenderResponse(result))
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(timestampLayout),
	})
}
