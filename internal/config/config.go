package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2img/internal/fileutil"
	"github.com/alnah/go-md2img/internal/logger"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidValue   = errors.New("invalid config value")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// DefaultName is the config file name searched when no path is given.
const DefaultName = "md2img"

// appDir is the directory under the user config dir holding config files.
const appDir = "go-md2img"

// Field limits.
const (
	MaxAddrLength   = 255
	MaxPathLength   = 4096
	MaxURLLength    = 2048 // Browser limit
	MaxOrigins      = 64
	MaxWorkers      = 64
	MaxQueueDepth   = 10000
	MaxPixelRatio   = 4
	MaxBodyLimit    = 100 << 20
	MaxWindowSize   = 10000
	DefaultBodySize = 10 << 20
)

// Config holds the service configuration.
type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Render      RenderConfig    `yaml:"render"`
	Browser     BrowserConfig   `yaml:"browser"`
	Assets      AssetsConfig    `yaml:"assets"`
	Log         logger.Config   `yaml:"log"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Development bool            `yaml:"development"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`        // host:port (default ":3000")
	CORSOrigins     []string `yaml:"corsOrigins"` // empty or "*" allows any origin
	BodyLimit       int64    `yaml:"bodyLimit"`   // bytes (default 10 MiB)
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"` // must cover a full render
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// RenderConfig defines render admission and timing.
type RenderConfig struct {
	Workers      int      `yaml:"workers"`  // 0 = derived from GOMAXPROCS
	MaxQueue     int      `yaml:"maxQueue"` // 0 = reject when busy
	QueueTimeout Duration `yaml:"queueTimeout"`
	StageTimeout Duration `yaml:"stageTimeout"`
	PixelRatio   float64  `yaml:"pixelRatio"`
	TempDir      string   `yaml:"tempDir"`  // created at startup, holds the debug screenshot
	DebugDir     string   `yaml:"debugDir"` // overrides tempDir for the debug screenshot

	DebugScreenshot bool `yaml:"debugScreenshot"` // false = no screenshot per render
}

// ScreenshotDir returns where each render saves its debug screenshot,
// or "" when screenshots are off.
func (r RenderConfig) ScreenshotDir() string {
	if !r.DebugScreenshot {
		return ""
	}
	if r.DebugDir != "" {
		return r.DebugDir
	}
	return r.TempDir
}

// BrowserConfig defines how Chrome is launched.
type BrowserConfig struct {
	Bin              string   `yaml:"bin"` // empty = ROD_BROWSER_BIN or managed Chromium
	Headless         bool     `yaml:"headless"`
	NoSandbox        bool     `yaml:"noSandbox"`
	WindowWidth      int      `yaml:"windowWidth"`
	WindowHeight     int      `yaml:"windowHeight"`
	OperationTimeout Duration `yaml:"operationTimeout"`
}

// AssetsConfig defines page asset overrides.
type AssetsConfig struct {
	BasePath        string `yaml:"basePath"` // Empty = use embedded assets
	React           string `yaml:"react"`
	ReactDOM        string `yaml:"reactDom"`
	CaptureLib      string `yaml:"captureLib"`
	ComponentScript string `yaml:"componentScript"`
	ComponentStyle  string `yaml:"componentStyle"`
}

// RateLimitConfig defines the global request rate limit.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":3000",
			CORSOrigins:     []string{"*"},
			BodyLimit:       DefaultBodySize,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(5 * time.Minute),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Render: RenderConfig{
			MaxQueue:     32,
			QueueTimeout: Duration(30 * time.Second),
			StageTimeout: Duration(30 * time.Second),
			PixelRatio:   2,
			TempDir:      filepath.Join(os.TempDir(), appDir),

			DebugScreenshot: true,
		},
		Browser: BrowserConfig{
			Headless:         true,
			WindowWidth:      1280,
			WindowHeight:     1024,
			OperationTimeout: Duration(30 * time.Second),
		},
		Log: logger.DefaultConfig(),
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

// Validate checks ranges and lengths.
// Called automatically by LoadConfig, but available for callers
// who build a Config from flags or environment only.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr: required", ErrInvalidValue)
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if len(c.Server.CORSOrigins) > MaxOrigins {
		return fmt.Errorf("%w: server.corsOrigins: at most %d entries, got %d", ErrInvalidValue, MaxOrigins, len(c.Server.CORSOrigins))
	}
	for i, origin := range c.Server.CORSOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.corsOrigins[%d]", i), origin, MaxURLLength); err != nil {
			return err
		}
	}
	if c.Server.BodyLimit <= 0 || c.Server.BodyLimit > MaxBodyLimit {
		return fmt.Errorf("%w: server.bodyLimit: must be between 1 and %d, got %d", ErrInvalidValue, MaxBodyLimit, c.Server.BodyLimit)
	}
	if err := requirePositive("server.readTimeout", c.Server.ReadTimeout); err != nil {
		return err
	}
	if err := requirePositive("server.writeTimeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if err := requirePositive("server.shutdownTimeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}

	if c.Render.Workers < 0 || c.Render.Workers > MaxWorkers {
		return fmt.Errorf("%w: render.workers: must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Render.Workers)
	}
	if c.Render.MaxQueue < 0 || c.Render.MaxQueue > MaxQueueDepth {
		return fmt.Errorf("%w: render.maxQueue: must be between 0 and %d, got %d", ErrInvalidValue, MaxQueueDepth, c.Render.MaxQueue)
	}
	if err := requirePositive("render.queueTimeout", c.Render.QueueTimeout); err != nil {
		return err
	}
	if err := requirePositive("render.stageTimeout", c.Render.StageTimeout); err != nil {
		return err
	}
	if c.Render.PixelRatio <= 0 || c.Render.PixelRatio > MaxPixelRatio {
		return fmt.Errorf("%w: render.pixelRatio: must be in (0, %d], got %.2f", ErrInvalidValue, MaxPixelRatio, c.Render.PixelRatio)
	}
	if err := validateFieldLength("render.tempDir", c.Render.TempDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.debugDir", c.Render.DebugDir, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if c.Browser.WindowWidth < 0 || c.Browser.WindowWidth > MaxWindowSize {
		return fmt.Errorf("%w: browser.windowWidth: must be between 0 and %d, got %d", ErrInvalidValue, MaxWindowSize, c.Browser.WindowWidth)
	}
	if c.Browser.WindowHeight < 0 || c.Browser.WindowHeight > MaxWindowSize {
		return fmt.Errorf("%w: browser.windowHeight: must be between 0 and %d, got %d", ErrInvalidValue, MaxWindowSize, c.Browser.WindowHeight)
	}

	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	for name, url := range map[string]string{
		"assets.react":           c.Assets.React,
		"assets.reactDom":        c.Assets.ReactDOM,
		"assets.captureLib":      c.Assets.CaptureLib,
		"assets.componentScript": c.Assets.ComponentScript,
		"assets.componentStyle":  c.Assets.ComponentStyle,
	} {
		if err := validateFieldLength(name, url, MaxURLLength); err != nil {
			return err
		}
		if url != "" {
			if err := fileutil.ValidateURL(url); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
			}
		}
	}

	if c.Log.Level != "" && !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level: unknown level %q", ErrInvalidValue, c.Log.Level)
	}
	if c.Log.Format != "" {
		switch strings.ToLower(c.Log.Format) {
		case "json", "console":
			// valid
		default:
			return fmt.Errorf("%w: log.format: invalid value %q (must be json or console)", ErrInvalidValue, c.Log.Format)
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("%w: rateLimit.rps: must be positive when enabled, got %.2f", ErrInvalidValue, c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("%w: rateLimit.burst: must be at least 1 when enabled, got %d", ErrInvalidValue, c.RateLimit.Burst)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func requirePositive(fieldName string, d Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidValue, fieldName, d)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name over
// DefaultConfig. Keys missing from the file keep their default.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// An empty nameOrPath searches for DefaultName.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is operator-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files LoadConfig tries for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries locations in order: current directory, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
