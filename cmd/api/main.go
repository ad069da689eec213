// Package main provides the main entry point for the Burger Master Pro API server
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/burgermaster/blendcalc/internal/infrastructure/container"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		container.New(*configPath),
	)
	if err := app.Err(); err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
