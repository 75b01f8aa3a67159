// Command gomata manages the Gomata Adhaar cattle registry: one-shot
// subcommands for scripting plus the interactive menu.
package main

import (
	"context"
	"gomata/internal/cli"
	"os"
	"os/signal"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.Execute(ctx, args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		return 1
	}
	return 0
}
