package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/Tyrowin/relaychat/internal/server"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := server.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	registry, registryErrs := channel.NewRegistry(config.NamePolicy, config.SeedChannels...)
	for _, registryErr := range registryErrs {
		log.Warn("Channel registry setup problem", "err", registryErr)
	}
	log.Info("Channel registry ready", "policy", config.NamePolicy, "channels", channel.Names(registry.List()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(*config, registry, log)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	log.Info("Program stopped cleanly")
	return nil
}
