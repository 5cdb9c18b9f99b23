package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"napclean/internal/app"
	"napclean/internal/logger"
	"napclean/internal/system"
)

func main() {
	log := logger.NewColoredLogger()

	cfg, err := system.LoadConfig()
	if err != nil {
		log.Error("System detection failed: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Warn("Interrupted, finishing current step...")
		cancel()
	}()

	application := app.New(cfg, log)
	if err := application.Execute(ctx); err != nil {
		if err != app.ErrRunFailed {
			log.Error("%v", err)
		}
		os.Exit(1)
	}
}
