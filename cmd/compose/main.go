// Command compose materialises a charm from an ordered chain of layers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/compotron/compose/internal/cli"
	composepkg "github.com/compotron/compose/pkg/compose"
)

// Version information, set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(fmt.Sprintf("%s (commit %s)", version, commit))

	if err := fang.Execute(ctx, root); err != nil {
		return composepkg.ExitCode(err)
	}
	return 0
}
