package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args[1:], DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches to a command and returns the process exit code.
// Without a command name, serve runs.
func run(ctx context.Context, args []string, env *Environment) int {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	} else if len(args) > 0 {
		switch args[0] {
		case "--version":
			cmd, args = "version", args[1:]
		case "-h", "--help":
			cmd, args = "help", args[1:]
		}
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args, env)
	case "render":
		err = runRender(ctx, args, env)
	case "doctor":
		return runDoctorCmd(args, env)
	case "version":
		fmt.Fprintf(env.Stdout, "md2img %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(args, env)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}

// runHelp prints general or per-command usage.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n", args[0])
		return ExitUsage
	}
	return ExitSuccess
}
