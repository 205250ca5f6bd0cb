// Package storage persists transactions in SQLite. Records are
// insert-only; every query is scoped to one user.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kakeibo/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const txColumns = "id, user_id, month, description, amount, type, category, is_fixed, created_at"

// Insert stores one transaction and returns its id. The record is
// validated first; Month must already be set by the caller.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, month, description, amount, type, category, is_fixed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Month, tx.Description, tx.Amount, string(tx.Type), tx.Category, tx.IsFixed)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"month", tx.Month,
		"type", string(tx.Type),
		"category", tx.Category,
		"is_fixed", tx.IsFixed)

	return id, nil
}

// Get returns one transaction by id.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// ListByMonth returns a user's transactions for one month, oldest
// first.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, userID, month string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = ? AND month = ? ORDER BY created_at ASC, id ASC",
		userID, month)
	if err != nil {
		return nil, fmt.Errorf("query monthly transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListFixed returns a user's fixed entries, newest first, keeping only
// the most recent row per distinct description. A re-registered fixed
// cost therefore shadows its older amounts.
func (r *SQLiteRepository) ListFixed(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = ? AND is_fixed = 1 ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query fixed transactions: %w", err)
	}
	defer rows.Close()

	all, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(all))
	unique := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if _, dup := seen[tx.Description]; dup {
			continue
		}
		seen[tx.Description] = struct{}{}
		unique = append(unique, tx)
	}
	return unique, nil
}

// ListAll returns a user's full history.
func (r *SQLiteRepository) ListAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = ? ORDER BY created_at ASC, id ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query all transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListExpenses returns a user's full expense history.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE user_id = ? AND type = 'expense' ORDER BY created_at ASC, id ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var txType, createdAt string
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Month, &tx.Description, &tx.Amount, &txType, &tx.Category, &tx.IsFixed, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.Type(txType)
	// CURRENT_TIMESTAMP is stored as UTC text.
	if ts, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
		tx.CreatedAt = ts.UTC()
	} else {
		slog.Warn("Malformed created_at, leaving zero", "id", tx.ID, "created_at", createdAt, "error", err)
	}
	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}
