package main

import (
	"context"
	"strings"
	"testing"
)

func TestRun_Version(t *testing.T) {
	for _, args := range [][]string{{"version"}, {"--version"}} {
		env, stdout, _ := testEnv(t, nil, "")
		if code := run(context.Background(), args, env); code != ExitSuccess {
			t.Fatalf("run(%v) = %d, want %d", args, code, ExitSuccess)
		}
		if got := stdout.String(); got != "md2img dev\n" {
			t.Errorf("run(%v) output = %q", args, got)
		}
	}
}

func TestRun_Help(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"bare help", []string{"help"}, ExitSuccess, "Commands:"},
		{"short flag", []string{"-h"}, ExitSuccess, "Commands:"},
		{"long flag", []string{"--help"}, ExitSuccess, "Commands:"},
		{"serve", []string{"help", "serve"}, ExitSuccess, "/api/markdown-to-image"},
		{"render", []string{"help", "render"}, ExitSuccess, "md2img render <file.md|->"},
		{"doctor", []string{"help", "doctor"}, ExitSuccess, "--json"},
		{"unknown topic", []string{"help", "bogus"}, ExitUsage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, stdout, _ := testEnv(t, nil, "")
			code := run(context.Background(), tt.args, env)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantOut != "" && !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("output should contain %q, got:\n%s", tt.wantOut, stdout.String())
			}
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	env, _, stderr := testEnv(t, nil, "")

	code := run(context.Background(), []string{"convert"}, env)

	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), `unknown command "convert"`) {
		t.Errorf("stderr should name the command, got %q", stderr.String())
	}
}

func TestRun_ServeFlagHelp(t *testing.T) {
	env, _, stderr := testEnv(t, nil, "")

	code := run(context.Background(), []string{"--help-me"}, env)
	if code != ExitUsage {
		t.Errorf("unknown serve flag: exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "error:") {
		t.Errorf("stderr should report the error, got %q", stderr.String())
	}

	env, _, _ = testEnv(t, nil, "")
	if code := run(context.Background(), []string{"serve", "--help"}, env); code != ExitSuccess {
		t.Errorf("serve --help: exit code = %d, want %d", code, ExitSuccess)
	}
}

func TestRun_RenderDispatch(t *testing.T) {
	env, _, stderr := testEnv(t, nil, "")

	code := run(context.Background(), []string{"render"}, env)

	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "no input file") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
