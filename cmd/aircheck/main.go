package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"aircheck/internal/config"
	"aircheck/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config.toml"

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load .env overrides if present (ngrok token etc.)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			logger.WithError(err).Warn("Could not load .env file")
		}
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	// Apply configured log level and format
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	// Create and configure the map server
	mapServer, err := server.NewMapServer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error creating map server")
	}

	// Load the station roster and date content. A failed load is not fatal:
	// the shell still serves, just without content.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeoutDuration())
	if err := mapServer.LoadCatalog(ctx); err != nil {
		logger.WithError(err).Error("Initial catalog load failed, serving empty shell")
	}
	cancel()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		mapServer.Start()
	}()

	// Wait for shutdown signal
	<-c

	logger.Info("Received shutdown signal")
	mapServer.Shutdown()
}
