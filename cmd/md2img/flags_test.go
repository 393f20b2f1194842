package main

import (
	"errors"
	"io"
	"testing"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2img/internal/config"
)

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	f, fs, err := parseServeFlags([]string{
		"--addr", ":8081", "--dev", "-w", "4", "-t", "20s", "--debug-dir", "/tmp/dbg",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseServeFlags: %v", err)
	}

	cfg := config.DefaultConfig()
	applyServeFlags(fs, f, cfg)

	if cfg.Server.Addr != ":8081" || !cfg.Development {
		t.Errorf("server flags not applied: %+v", cfg.Server)
	}
	if cfg.Render.Workers != 4 || cfg.Render.StageTimeout.Std() != 20*time.Second {
		t.Errorf("render flags not applied: %+v", cfg.Render)
	}
	if cfg.Render.DebugDir != "/tmp/dbg" {
		t.Errorf("DebugDir = %q", cfg.Render.DebugDir)
	}
	if !cfg.Browser.Headless {
		t.Error("headless should stay on without --headful")
	}
}

func TestParseServeFlags_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown flag", []string{"--nope"}, ErrUsage},
		{"bad duration", []string{"--timeout", "soon"}, ErrUsage},
		{"positional", []string{"doc.md"}, ErrUsage},
		{"help", []string{"--help"}, flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := parseServeFlags(tt.args, io.Discard)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplyServeFlags_Defaults(t *testing.T) {
	t.Parallel()

	f, fs, err := parseServeFlags(nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.Render.Workers = 6
	cfg.Render.StageTimeout = config.Duration(time.Minute)

	applyServeFlags(fs, f, cfg)

	if cfg.Server.Addr != ":9999" || cfg.Render.Workers != 6 || cfg.Render.StageTimeout.Std() != time.Minute {
		t.Errorf("unset flags must not override config: %+v %+v", cfg.Server, cfg.Render)
	}
}

func TestApplyServeFlags_LogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", nil, "info"},
		{"verbose", []string{"-v"}, "debug"},
		{"quiet", []string{"-q"}, "error"},
		{"explicit wins over verbose", []string{"-v", "--log-level", "warn"}, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, fs, err := parseServeFlags(tt.args, io.Discard)
			if err != nil {
				t.Fatal(err)
			}
			cfg := config.DefaultConfig()
			applyServeFlags(fs, f, cfg)
			if cfg.Log.Level != tt.want {
				t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, tt.want)
			}
		})
	}
}

func TestParseRenderFlags(t *testing.T) {
	t.Parallel()

	f, fs, args, err := parseRenderFlags([]string{
		"post.md", "--theme", "Dark", "--size", "desktop", "--header", "H", "--footer", "F",
		"-o", "out.png", "--headful", "--asset-path", "/srv/a",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseRenderFlags: %v", err)
	}

	if len(args) != 1 || args[0] != "post.md" {
		t.Errorf("args = %v", args)
	}
	if f.theme != "Dark" || f.size != "desktop" || f.header != "H" || f.footer != "F" || f.output != "out.png" {
		t.Errorf("flags = %+v", f)
	}

	cfg := config.DefaultConfig()
	applyBrowserFlags(fs, &f.browser, cfg)
	if cfg.Browser.Headless {
		t.Error("--headful should disable headless")
	}
	if cfg.Assets.BasePath != "/srv/a" {
		t.Errorf("BasePath = %q", cfg.Assets.BasePath)
	}
}
