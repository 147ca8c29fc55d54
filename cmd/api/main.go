package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"policyinsight/internal/api/app"
	"policyinsight/internal/logging"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		logging.Error("failed to initialize app", "err", err)
		os.Exit(1)
	}

	go func() {
		if err := a.Start(); err != nil {
			logging.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		logging.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	logging.Info("server exiting")
}
