// Command task-cli is a command-line task tracker backed by a JSON file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/task-cli/cmd"
)

func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes the CLI and maps its result to a process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := cmd.RunWithIO(ctx, args, stdout, stderr)
	if err == nil {
		return 0
	}
	if ctx.Err() != nil {
		fmt.Fprintf(stderr, "\nInterrupted\n")
		return 130
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var usageErr *cmd.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(stderr, "Run 'task-cli help' for usage.")
		return 2
	}
	return 1
}
