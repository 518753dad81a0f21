package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/forecast"
	"github.com/VirusHacks/kaizen/internal/httpapi"
	"github.com/VirusHacks/kaizen/internal/segmentation"
	"github.com/VirusHacks/kaizen/internal/whatsapp"
	applog "github.com/VirusHacks/kaizen/pkg/log"
	"github.com/VirusHacks/kaizen/pkg/metrics"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Override the configured port")
	flag.Parse()

	// Setup dependencies
	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, _ := loader.Load()
	logger, _ := applog.NewCslLogger()
	if *port != 0 {
		config.Server.Port = *port
	}

	m, _ := metrics.NewMetrics()
	forecaster, _ := forecast.NewForecaster(logger, config)
	pipeline, _ := segmentation.NewPipeline(logger, config)

	// A missing Twilio configuration disables the WhatsApp endpoints
	// instead of stopping the service
	var sender whatsapp.Sender
	if twilioSender, err := whatsapp.NewTwilioSender(logger, config); err != nil {
		logger.Warn(ctx, "WhatsApp sending disabled: %v", err)
	} else {
		sender = twilioSender
	}
	dispatcher, _ := whatsapp.NewDispatcher(logger, config, sender)

	handler, err := httpapi.NewHandler(logger, config, m, forecaster, pipeline, dispatcher)
	if err != nil {
		log.Fatalf("Failed to create handler: %v", err)
	}

	// Create and run the server
	server, err := httpapi.NewServer(logger, config, handler)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run server in a goroutine
	go func() {
		logger.Info(ctx, "Starting forecast service on port %d", config.Server.Port)
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop

	// Create a context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Gracefully shutdown the server
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	logger.Info(ctx, "Server shut down gracefully")
}
