package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"basegraph.app/bugrelay/common/id"
	"basegraph.app/bugrelay/common/logger"
	"basegraph.app/bugrelay/core/config"
	"basegraph.app/bugrelay/internal/service"
)

func main() {
	a := &app{
		out:          os.Stdout,
		loadServices: loadServices,
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadServices(verbose bool) (*service.Services, error) {
	logger.SetupCLI(verbose)

	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := id.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("initializing id generator: %w", err)
	}

	return service.NewServices(cfg, slog.Default())
}
