package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/config"
	"github.com/ZebulonRouseFrantzich/boj-launcher/internal/launcher"
)

// Version will be set at build time via -ldflags. It doubles as the default
// server version to provision.
var Version = "0.1.0"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], launcher.Options{Version: Version}, os.Stderr))
}

// run executes the launcher and maps its outcome to a process exit status.
// Any failure is reported on a single stderr line and exits 1.
func run(ctx context.Context, args []string, opts launcher.Options, stderr io.Writer) int {
	code, err := launcher.Run(ctx, args, opts)
	if err != nil {
		fmt.Fprintf(stderr, "[%s] %v\n", config.ProductName, err)
		return 1
	}
	return code
}
