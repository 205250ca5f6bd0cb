package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"kakeibo/internal/amqp"
	"kakeibo/internal/cli"
	"kakeibo/internal/config"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/line"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	lineClient, err := line.NewClient(cfg.LineChannelAccessToken)
	if err != nil {
		logger.Error("Failed to initialize LINE client", log.FieldError, err)
		os.Exit(1)
	}

	// Backup publishing is optional. Without AMQP the bot still works,
	// transactions just stay local.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher initialized", log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	service := services.NewMessageService(repo, lineClient, publisher, cfg.ChartBaseURL)
	defer service.Close()

	srv, err := apphttp.NewServer(":"+cfg.Port, cfg.LineChannelSecret, service)
	if err != nil {
		logger.Error("Failed to initialize HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting kakeibo server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
