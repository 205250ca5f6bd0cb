// Package worker runs the asynchronous backup pipeline: sync messages
// from the webhook service are resolved against SQLite and mirrored to
// the Google Sheets ledger.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// TransactionBackupper appends one transaction to the backup ledger.
type TransactionBackupper interface {
	Append(ctx context.Context, tx core.Transaction) error
}

// TransactionSource loads stored transactions by id.
type TransactionSource interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
}

// SyncWorker mirrors stored transactions into the backup ledger.
type SyncWorker struct {
	source TransactionSource
	backup TransactionBackupper
}

var _ TransactionSource = (*storage.SQLiteRepository)(nil)

func NewSyncWorker(source TransactionSource, backup TransactionBackupper) *SyncWorker {
	return &SyncWorker{
		source: source,
		backup: backup,
	}
}

// HandleSyncMessage processes one sync message: load the transaction
// and append it to the ledger. Returning an error requeues the
// message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	tx, err := w.source.Get(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", msg.ID, err)
	}

	if w.backup == nil {
		slog.WarnContext(ctx, "No backup ledger configured, skipping", "id", msg.ID)
		return nil
	}

	if err := w.backup.Append(ctx, tx); err != nil {
		return fmt.Errorf("append transaction %d to backup: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored to backup ledger",
		"id", msg.ID,
		"month", tx.Month,
		"category", tx.Category)

	return nil
}
