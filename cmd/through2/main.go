// Command through2 pipes stdin to stdout through a chunk transform.
//
// Usage:
//
//	through2 [flags] <command> [args]
//
// Commands:
//
//	append <suffix>      - append suffix to every chunk
//	replace <old> <new>  - replace old with new inside every chunk
//	count                - swallow input and print the byte count at the end
//	version              - print build information
//
// Stream options are read from config.yml, .env and STREAM_* environment
// variables, e.g. STREAM_HIGH_WATER_MARK=1024.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kbukum/through2/cmd/through2/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
