// Command qrbatch generates styled QR codes, singly or in bulk from a
// spreadsheet, and can serve the same operations over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/qrbatch/internal/cli"
	"github.com/rshade/qrbatch/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command and returns the process exit code. SIGINT
// and SIGTERM cancel the command context so bulk runs stop between records.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && !cli.IsReported(err) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return cli.ExitCode(err)
}
