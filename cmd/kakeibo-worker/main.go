package main

import (
	"context"
	"os"
	"time"

	"kakeibo/internal/amqp"
	"kakeibo/internal/cli"
	"kakeibo/internal/config"
	"kakeibo/internal/log"
	"kakeibo/internal/sheets"
	"kakeibo/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting kakeibo-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	// The worker reads stored transactions and appends them to the
	// backup spreadsheet.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sheetsClient, err := sheets.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheetsClient)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeTransactionSync(ctx, func(msg *amqp.TransactionSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	}()

	logger.Info("Worker started, consuming sync messages", log.FieldQueue, cfg.AMQPQueue)

	select {
	case err := <-consumeErr:
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
