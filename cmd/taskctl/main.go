package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/magabrotheeeer/tasktracker/internal/cli/taskctl"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := taskctl.New().App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		cancel()
		os.Exit(1)
	}
}
