package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"spendy/internal/alert"
	"spendy/internal/amqp"
	"spendy/internal/config"
	"spendy/internal/log"
	"spendy/internal/notify"
	"spendy/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup("notify-relay")
	logger.Info("Starting notify-relay")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notification relay")
		os.Exit(1)
	}
	if cfg.WhatsAppGatewayURL == "" {
		logger.Error("WHATSAPP_GATEWAY_URL is required for the notification relay")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	whatsapp := notify.NewWhatsAppClient(cfg.WhatsAppGatewayURL, cfg.WhatsAppPhoneNumber)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := whatsapp.Health(ctx); err != nil {
		logger.Warn("WhatsApp gateway health check failed, continuing anyway", "error", err)
	}

	minSeverity := alert.Severity(strings.ToLower(cfg.NotifyMinSeverity))
	relay := worker.NewNotifyWorker(whatsapp, minSeverity)

	logger.Info("Consuming alert notifications",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"min_severity", string(minSeverity))

	if err := amqpClient.ConsumeAlertNotifications(ctx, relay.HandleNotification); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Relay stopped gracefully")
}
