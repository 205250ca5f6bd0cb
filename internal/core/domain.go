package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

const (
	CommandMonthlySummary Command = "monthly_summary"
	CommandFixedList      Command = "fixed_list"
	CommandBalance        Command = "balance"
)

type (
	// Type distinguishes money coming in from money going out. It is
	// inferred from the description, never chosen by the user directly.
	Type string

	// Command is a fixed trigger phrase mapped to a report action.
	// Commands are transient and never persisted.
	Command string

	// Transaction is one registered income or expense entry. Records are
	// immutable once inserted; aggregation only reads them.
	Transaction struct {
		ID          int64
		UserID      string
		Month       string // YYYY-MM, fixed at insert time in UTC+9
		Description string
		Amount      int64 // whole yen, always positive
		Type        Type
		Category    string
		IsFixed     bool
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyUserID      = errors.New("empty user id")
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func (t Type) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.UserID) == "" {
		return ErrEmptyUserID
	}
	if !monthPattern.MatchString(tx.Month) {
		return ErrInvalidMonth
	}
	if strings.TrimSpace(tx.Description) == "" {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
