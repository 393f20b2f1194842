package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2img/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
// Zero values mean "not set".
type envConfig struct {
	ConfigPath   string        // MD2IMG_CONFIG: config file path
	Addr         string        // MD2IMG_ADDR or PORT: listen address
	Development  bool          // MD2IMG_ENV=development
	Workers      int           // MD2IMG_WORKERS: concurrent renders
	MaxQueue     int           // MD2IMG_MAX_QUEUE: queued renders (-1 = unset)
	StageTimeout time.Duration // MD2IMG_TIMEOUT: per-stage timeout
	QueueTimeout time.Duration // MD2IMG_QUEUE_TIMEOUT: admission wait
	LogLevel     string        // MD2IMG_LOG_LEVEL
	LogFormat    string        // MD2IMG_LOG_FORMAT
	Headless     *bool         // MD2IMG_HEADLESS
	BrowserBin   string        // MD2IMG_BROWSER_BIN
	DebugDir     string        // MD2IMG_DEBUG_DIR
	Screenshot   *bool         // MD2IMG_DEBUG_SCREENSHOT
	TempDir      string        // MD2IMG_TEMP_DIR
	AssetPath    string        // MD2IMG_ASSET_PATH
	CORSOrigins  []string      // MD2IMG_CORS_ORIGINS: comma-separated
	RateLimit    float64       // MD2IMG_RATE_LIMIT: requests per second, enables limiting
}

// knownEnvVars lists valid MD2IMG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2IMG_CONFIG":           true,
	"MD2IMG_ADDR":             true,
	"MD2IMG_ENV":              true,
	"MD2IMG_WORKERS":          true,
	"MD2IMG_MAX_QUEUE":        true,
	"MD2IMG_TIMEOUT":          true,
	"MD2IMG_QUEUE_TIMEOUT":    true,
	"MD2IMG_LOG_LEVEL":        true,
	"MD2IMG_LOG_FORMAT":       true,
	"MD2IMG_HEADLESS":         true,
	"MD2IMG_BROWSER_BIN":      true,
	"MD2IMG_DEBUG_DIR":        true,
	"MD2IMG_DEBUG_SCREENSHOT": true,
	"MD2IMG_TEMP_DIR":         true,
	"MD2IMG_ASSET_PATH":       true,
	"MD2IMG_CORS_ORIGINS":     true,
	"MD2IMG_RATE_LIMIT":       true,
	"MD2IMG_CONTAINER":        true,
}

// loadEnvConfig reads MD2IMG_* variables. Malformed values are reported
// on w and ignored.
func loadEnvConfig(getenv func(string) string, w io.Writer) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("MD2IMG_CONFIG"),
		Addr:        getenv("MD2IMG_ADDR"),
		Development: strings.EqualFold(getenv("MD2IMG_ENV"), "development"),
		MaxQueue:    -1,
		LogLevel:    getenv("MD2IMG_LOG_LEVEL"),
		LogFormat:   getenv("MD2IMG_LOG_FORMAT"),
		BrowserBin:  getenv("MD2IMG_BROWSER_BIN"),
		DebugDir:    getenv("MD2IMG_DEBUG_DIR"),
		TempDir:     getenv("MD2IMG_TEMP_DIR"),
		AssetPath:   getenv("MD2IMG_ASSET_PATH"),
	}

	// PORT is the convention of most container platforms
	if cfg.Addr == "" {
		if port := getenv("PORT"); port != "" {
			if _, err := strconv.Atoi(port); err == nil {
				cfg.Addr = ":" + port
			} else {
				warnInvalidEnv(w, "PORT", port)
			}
		}
	}

	if v := getenv("MD2IMG_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Workers = n
		} else {
			warnInvalidEnv(w, "MD2IMG_WORKERS", v)
		}
	}
	if v := getenv("MD2IMG_MAX_QUEUE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxQueue = n
		} else {
			warnInvalidEnv(w, "MD2IMG_MAX_QUEUE", v)
		}
	}
	cfg.StageTimeout = parseEnvDuration(getenv, w, "MD2IMG_TIMEOUT")
	cfg.QueueTimeout = parseEnvDuration(getenv, w, "MD2IMG_QUEUE_TIMEOUT")

	if v := getenv("MD2IMG_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = &b
		} else {
			warnInvalidEnv(w, "MD2IMG_HEADLESS", v)
		}
	}

	if v := getenv("MD2IMG_DEBUG_SCREENSHOT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Screenshot = &b
		} else {
			warnInvalidEnv(w, "MD2IMG_DEBUG_SCREENSHOT", v)
		}
	}

	if v := getenv("MD2IMG_CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if v := getenv("MD2IMG_RATE_LIMIT"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			cfg.RateLimit = rps
		} else {
			warnInvalidEnv(w, "MD2IMG_RATE_LIMIT", v)
		}
	}

	return cfg
}

func parseEnvDuration(getenv func(string) string, w io.Writer, name string) time.Duration {
	v := getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		warnInvalidEnv(w, name, v)
		return 0
	}
	return d
}

func warnInvalidEnv(w io.Writer, name, value string) {
	fmt.Fprintf(w, "warning: ignoring %s=%q (invalid value)\n", name, value)
}

// warnUnknownEnvVars writes a warning for each unrecognized MD2IMG_* variable.
// Helps catch typos like MD2IMG_WORKER instead of MD2IMG_WORKERS.
func warnUnknownEnvVars(environ []string, w io.Writer) {
	for _, env := range environ {
		if strings.HasPrefix(env, "MD2IMG_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides cfg with every variable that is set.
// Precedence: flags > env vars > config file > defaults
// (flags are applied afterwards by applyServeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Development {
		cfg.Development = true
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.MaxQueue >= 0 {
		cfg.Render.MaxQueue = env.MaxQueue
	}
	if env.StageTimeout > 0 {
		cfg.Render.StageTimeout = config.Duration(env.StageTimeout)
	}
	if env.QueueTimeout > 0 {
		cfg.Render.QueueTimeout = config.Duration(env.QueueTimeout)
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Headless != nil {
		cfg.Browser.Headless = *env.Headless
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.DebugDir != "" {
		cfg.Render.DebugDir = env.DebugDir
	}
	if env.Screenshot != nil {
		cfg.Render.DebugScreenshot = *env.Screenshot
	}
	if env.TempDir != "" {
		cfg.Render.TempDir = env.TempDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if len(env.CORSOrigins) > 0 {
		cfg.Server.CORSOrigins = env.CORSOrigins
	}
	if env.RateLimit > 0 {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.RPS = env.RateLimit
		if cfg.RateLimit.Burst < 1 {
			cfg.RateLimit.Burst = 1
		}
	}
}
