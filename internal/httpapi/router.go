// Package httpapi exposes the renderer over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alnah/go-md2img/internal/logger"
)

// Route paths.
const (
	RenderPath      = "/api/markdown-to-image"
	RenderAliasPath = "/render"
	HealthPath      = "/api/health"
	HealthAliasPath = "/health"
	MetricsPath     = "/metrics"
)

// DefaultRetryAfter is sent with 503 responses.
const DefaultRetryAfter = 5 * time.Second

// Options configures the router.
type Options struct {
	Renderer    Renderer
	Logger      *zap.Logger
	Metrics     Metrics       // nil disables /metrics and request metrics
	CORSOrigins []string      // empty or "*" allows any origin
	BodyLimit   int64         // bytes, <= 0 means unlimited
	Limiter     *rate.Limiter // nil disables rate limiting
	RetryAfter  time.Duration // <= 0 uses DefaultRetryAfter
	Development bool          // include stack traces in 500 responses
	Now         func() time.Time
}

// Metrics records requests and serves the exposition endpoint.
type Metrics interface {
	ObserveRequest(method, route string, status int, d time.Duration)
	Handler() http.Handler
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = DefaultRetryAfter
	}

	r := gin.New()
	r.Use(
		RequestID(),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
	)
	if opts.Metrics != nil {
		r.Use(RequestMetrics(opts.Metrics))
	}
	r.Use(CORS(opts.CORSOrigins))

	h := &handler{
		renderer:    opts.Renderer,
		retryAfter:  opts.RetryAfter,
		development: opts.Development,
		now:         opts.Now,
	}

	render := []gin.HandlerFunc{BodyLimit(opts.BodyLimit)}
	if opts.Limiter != nil {
		render = append(render, RateLimit(opts.Limiter))
	}
	render = append(render, h.render)

	r.POST(RenderPath, render...)
	r.POST(RenderAliasPath, render...)
	r.GET(HealthPath, h.health)
	r.GET(HealthAliasPath, h.health)
	if opts.Metrics != nil {
		r.GET(MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	})

	return r
}
