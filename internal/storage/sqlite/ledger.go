package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInsufficientFunds is returned when the payer cannot cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransfer is returned for non-positive amounts or self transfers.
	ErrInvalidTransfer = errors.New("invalid transfer")
)

// Ledger is an account-balance ledger in its own SQLite file. It plays the
// role of the native-currency transfer system the engine moves funds with.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the ledger database at dbPath.
func OpenLedger(dbPath string) (*Ledger, error) {
	db, err := open(dbPath, ledgerSchema)
	if err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Transfer moves amount from one account to another atomically.
// Nothing changes when the payer's balance is too low.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 || from == to {
		return fmt.Errorf("%w: %d from %s to %s", ErrInvalidTransfer, amount, from, to)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := balanceOf(ctx, tx, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, balance, amount)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance = balance - ? WHERE address = ?",
		amount, from,
	); err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}
	if err := credit(ctx, tx, to, amount); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO transfers (id, from_address, to_address, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), from, to, amount, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Deposit credits an account from outside the ledger.
func (l *Ledger) Deposit(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit of %d", ErrInvalidTransfer, amount)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := credit(ctx, tx, address, amount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Balance returns the balance of an account; unknown accounts hold zero.
func (l *Ledger) Balance(ctx context.Context, address string) (int64, error) {
	var balance int64
	err := l.db.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE address = ?", address).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func balanceOf(ctx context.Context, tx *sql.Tx, address string) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE address = ?", address).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", address, err)
	}
	return balance, nil
}

func credit(ctx context.Context, tx *sql.Tx, address string, amount int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (address, balance) VALUES (?, ?)
		 ON CONFLICT(address) DO UPDATE SET balance = balance + excluded.balance`,
		address, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", address, err)
	}
	return nil
}
