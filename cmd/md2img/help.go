package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2img [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP rendering service (default)")
	fmt.Fprintln(w, "  render     Render one markdown file to PNG")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2img help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2img serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve POST /api/markdown-to-image and GET /api/health.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default \":3000\", or $PORT)")
	fmt.Fprintln(w, "      --dev                 Development mode (console logs, stack traces)")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent renders (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout per render stage (default 30s)")
	fmt.Fprintln(w, "      --headful             Show the browser window")
	fmt.Fprintln(w, "      --asset-path <dir>    Override page template and stylesheet")
	fmt.Fprintln(w, "      --debug-dir <dir>     Debug screenshot directory (default: temp dir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only log errors")
	fmt.Fprintln(w, "  -v, --verbose             Log render stages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2IMG_CONFIG, MD2IMG_ADDR, PORT, MD2IMG_ENV, MD2IMG_WORKERS,")
	fmt.Fprintln(w, "  MD2IMG_MAX_QUEUE, MD2IMG_TIMEOUT, MD2IMG_QUEUE_TIMEOUT, MD2IMG_LOG_LEVEL,")
	fmt.Fprintln(w, "  MD2IMG_LOG_FORMAT, MD2IMG_HEADLESS, MD2IMG_BROWSER_BIN, MD2IMG_DEBUG_DIR,")
	fmt.Fprintln(w, "  MD2IMG_TEMP_DIR, MD2IMG_DEBUG_SCREENSHOT, MD2IMG_ASSET_PATH,")
	fmt.Fprintln(w, "  MD2IMG_CORS_ORIGINS, MD2IMG_RATE_LIMIT")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2img render <file.md|-> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one markdown file to a PNG poster. Use - to read stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Poster:")
	fmt.Fprintln(w, "      --theme <s>           Theme (default \"SpringGradientWave\")")
	fmt.Fprintln(w, "      --size <s>            Size (default \"mobile\")")
	fmt.Fprintln(w, "      --header <s>          Header text")
	fmt.Fprintln(w, "      --footer <s>          Footer text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input name with .png)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout per render stage (default 30s)")
	fmt.Fprintln(w, "      --headful             Show the browser window")
	fmt.Fprintln(w, "      --asset-path <dir>    Override page template and stylesheet")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log render stages")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2img doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that Chrome can be found and launched in this environment.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}
