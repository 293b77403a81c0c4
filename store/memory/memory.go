// Package memory provides an in-memory store.Store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps records in maps guarded by one RWMutex. List calls return
// fresh slices; callers may modify them freely.
type Store struct {
	mu        sync.RWMutex
	accounts  map[recordKey]factory.AccountRecord
	income    map[recordKey]factory.IncomeRecord
	bills     map[recordKey]factory.BillRecord
	transfers map[recordKey]factory.TransferRecord
}

// recordKey scopes record IDs to their user.
type recordKey struct {
	userID string
	id     string
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	s := &Store{}
	s.init()
	return s
}

func (s *Store) init() {
	s.accounts = make(map[recordKey]factory.AccountRecord)
	s.income = make(map[recordKey]factory.IncomeRecord)
	s.bills = make(map[recordKey]factory.BillRecord)
	s.transfers = make(map[recordKey]factory.TransferRecord)
}

// Accounts

func (s *Store) SaveAccount(_ context.Context, rec factory.AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[keyOf(rec)] = rec
	return nil
}

func (s *Store) ListAccounts(_ context.Context, userID string) ([]factory.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.accounts, userID), nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.accounts, userID, id)
}

// Income

func (s *Store) SaveIncome(_ context.Context, rec factory.IncomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.income[keyOf(rec)] = rec
	return nil
}

func (s *Store) ListIncome(_ context.Context, userID string) ([]factory.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.income, userID), nil
}

func (s *Store) DeleteIncome(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.income, userID, id)
}

// Bills

func (s *Store) SaveBill(_ context.Context, rec factory.BillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bills[keyOf(rec)] = rec
	return nil
}

func (s *Store) ListBills(_ context.Context, userID string) ([]factory.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.bills, userID), nil
}

func (s *Store) DeleteBill(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.bills, userID, id)
}

// Transfers

func (s *Store) SaveTransfer(_ context.Context, rec factory.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers[keyOf(rec)] = rec
	return nil
}

func (s *Store) ListTransfers(_ context.Context, userID string) ([]factory.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return list(s.transfers, userID), nil
}

func (s *Store) DeleteTransfer(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.transfers, userID, id)
}

// ListUsers returns every user that owns a record.
func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for k := range s.accounts {
		seen[k.userID] = true
	}
	for k := range s.income {
		seen[k.userID] = true
	}
	for k := range s.bills {
		seen[k.userID] = true
	}
	for k := range s.transfers {
		seen[k.userID] = true
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

// Reset clears all data.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// keyed is satisfied by every record type.
type keyed interface {
	Key() (userID, id string)
}

func keyOf(r keyed) recordKey {
	userID, id := r.Key()
	return recordKey{userID: userID, id: id}
}

func list[T keyed](rows map[recordKey]T, userID string) []T {
	out := make([]T, 0)
	for k, r := range rows {
		if k.userID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		_, a := out[i].Key()
		_, b := out[j].Key()
		return a < b
	})
	return out
}

func remove[T keyed](rows map[recordKey]T, userID, id string) error {
	k := recordKey{userID: userID, id: id}
	if _, ok := rows[k]; !ok {
		return store.ErrNotFound
	}
	delete(rows, k)
	return nil
}
