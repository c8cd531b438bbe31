package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PancakeLord3000/Boid-Simulation/cmd"
	"github.com/PancakeLord3000/Boid-Simulation/internal/logging"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logging.Sync()
			fmt.Fprintln(os.Stderr, "panic:", r)
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
