package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2img/internal/config"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// browserFlags holds flags that shape each render.
type browserFlags struct {
	headful   bool
	timeout   time.Duration
	assetPath string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	browser  browserFlags
	addr     string
	dev      bool
	workers  int
	logLevel string
	debugDir string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common  commonFlags
	browser browserFlags
	output  string
	theme   string
	size    string
	header  string
	footer  string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log render stages")
}

// addBrowserFlags adds browser flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.BoolVar(&f.headful, "headful", false, "show the browser window")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "timeout per render stage (e.g. 30s)")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding the page template and stylesheet")
}

// parseServeFlags parses serve arguments. The FlagSet is returned so
// callers can tell explicit values from defaults.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, *flag.FlagSet, error) {
	f := &serveFlags{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { printServeUsage(w) }

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	fs.StringVar(&f.addr, "addr", "", "listen address (default \":3000\")")
	fs.BoolVar(&f.dev, "dev", false, "development mode: console logs, stack traces in errors")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent renders (0 = auto)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.debugDir, "debug-dir", "", "debug screenshot directory (default: temp dir)")

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	return f, fs, nil
}

// parseRenderFlags parses render arguments and returns the positional ones.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, *flag.FlagSet, []string, error) {
	f := &renderFlags{}
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { printRenderUsage(w) }

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	fs.StringVarP(&f.output, "output", "o", "", "output PNG path (default: input name with .png)")
	fs.StringVar(&f.theme, "theme", "", "poster theme (default \"SpringGradientWave\")")
	fs.StringVar(&f.size, "size", "", "poster size (default \"mobile\")")
	fs.StringVar(&f.header, "header", "", "poster header text")
	fs.StringVar(&f.footer, "footer", "", "poster footer text")

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, nil, err
	}
	return f, fs, fs.Args(), nil
}

func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// applyBrowserFlags overrides cfg with explicitly set browser flags.
func applyBrowserFlags(fs *flag.FlagSet, f *browserFlags, cfg *config.Config) {
	if f.headful {
		cfg.Browser.Headless = false
	}
	if fs.Changed("timeout") {
		cfg.Render.StageTimeout = config.Duration(f.timeout)
	}
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assetPath
	}
}

// applyServeFlags overrides cfg with explicitly set serve flags.
func applyServeFlags(fs *flag.FlagSet, f *serveFlags, cfg *config.Config) {
	applyBrowserFlags(fs, &f.browser, cfg)
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if f.dev {
		cfg.Development = true
	}
	if fs.Changed("workers") {
		cfg.Render.Workers = f.workers
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if f.common.verbose && !fs.Changed("log-level") {
		cfg.Log.Level = "debug"
	}
	if f.common.quiet && !fs.Changed("log-level") {
		cfg.Log.Level = "error"
	}
	if fs.Changed("debug-dir") {
		cfg.Render.DebugDir = f.debugDir
	}
}
