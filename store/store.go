/*
Package store defines persistence for the raw records of each user.

PURPOSE:
  The forecasting engine never touches storage. The store holds the records
  (accounts, income, bills, transfers) as entered, and callers load a user's
  records, convert them with factory.Builder and hand the snapshot to the
  engine.

IMPLEMENTATIONS:
  store/memory:   In-memory, for tests and dev
  store/sqlstore: SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq)

SEMANTICS:
  - Save* upserts by (user, record ID); IDs only need to be unique per user
  - List* returns a user's records ordered by ID
  - Delete* returns ErrNotFound when the user has no record with that ID
  - Reset removes everything (demo/dev only)

SEE ALSO:
  - factory/records.go: Record types
*/
package store

import (
	"context"
	"fmt"

	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/generic"
)

// ErrNotFound is returned when deleting a record that does not exist.
var ErrNotFound = generic.ErrNotFound

// Store persists the records of every user.
type Store interface {
	SaveAccount(ctx context.Context, rec factory.AccountRecord) error
	ListAccounts(ctx context.Context, userID string) ([]factory.AccountRecord, error)
	DeleteAccount(ctx context.Context, userID, id string) error

	SaveIncome(ctx context.Context, rec factory.IncomeRecord) error
	ListIncome(ctx context.Context, userID string) ([]factory.IncomeRecord, error)
	DeleteIncome(ctx context.Context, userID, id string) error

	SaveBill(ctx context.Context, rec factory.BillRecord) error
	ListBills(ctx context.Context, userID string) ([]factory.BillRecord, error)
	DeleteBill(ctx context.Context, userID, id string) error

	SaveTransfer(ctx context.Context, rec factory.TransferRecord) error
	ListTransfers(ctx context.Context, userID string) ([]factory.TransferRecord, error)
	DeleteTransfer(ctx context.Context, userID, id string) error

	// ListUsers returns every user ID that owns at least one record, sorted.
	ListUsers(ctx context.Context) ([]string, error)

	Reset(ctx context.Context) error
	Close() error
}

// LoadRecords reads all records of a user.
func LoadRecords(ctx context.Context, s Store, userID string) (factory.Records, error) {
	var r factory.Records
	var err error

	if r.Accounts, err = s.ListAccounts(ctx, userID); err != nil {
		return factory.Records{}, fmt.Errorf("failed to load accounts: %w", err)
	}
	if r.Income, err = s.ListIncome(ctx, userID); err != nil {
		return factory.Records{}, fmt.Errorf("failed to load income: %w", err)
	}
	if r.Bills, err = s.ListBills(ctx, userID); err != nil {
		return factory.Records{}, fmt.Errorf("failed to load bills: %w", err)
	}
	if r.Transfers, err = s.ListTransfers(ctx, userID); err != nil {
		return factory.Records{}, fmt.Errorf("failed to load transfers: %w", err)
	}
	return r, nil
}

// SaveRecords writes every record. Records without a user take userID.
func SaveRecords(ctx context.Context, s Store, userID string, r factory.Records) error {
	for _, rec := range r.Accounts {
		if rec.UserID == "" {
			rec.UserID = userID
		}
		if err := s.SaveAccount(ctx, rec); err != nil {
			return fmt.Errorf("failed to save account %s: %w", rec.ID, err)
		}
	}
	for _, rec := range r.Income {
		if rec.UserID == "" {
			rec.UserID = userID
		}
		if err := s.SaveIncome(ctx, rec); err != nil {
			return fmt.Errorf("failed to save income %s: %w", rec.ID, err)
		}
	}
	for _, rec := range r.Bills {
		if rec.UserID == "" {
			rec.UserID = userID
		}
		if err := s.SaveBill(ctx, rec); err != nil {
			return fmt.Errorf("failed to save bill %s: %w", rec.ID, err)
		}
	}
	for _, rec := range r.Transfers {
		if rec.UserID == "" {
			rec.UserID = userID
		}
		if err := s.SaveTransfer(ctx, rec); err != nil {
			return fmt.Errorf("failed to save transfer %s: %w", rec.ID, err)
		}
	}
	return nil
}
