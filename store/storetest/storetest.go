// Package storetest holds the behavior every store.Store must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/store"
)

// Run exercises a store implementation. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("SaveAndList", func(t *testing.T) { testSaveAndList(t, newStore(t)) })
	t.Run("UpsertReplaces", func(t *testing.T) { testUpsert(t, newStore(t)) })
	t.Run("ListIsPerUser", func(t *testing.T) { testPerUser(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("OptionalFieldsRoundTrip", func(t *testing.T) { testOptionalFields(t, newStore(t)) })
	t.Run("ListUsersAndReset", func(t *testing.T) { testUsersAndReset(t, newStore(t)) })
	t.Run("LoadSaveRecords", func(t *testing.T) { testLoadSave(t, newStore(t)) })
}

func testSaveAndList(t *testing.T, s store.Store) {
	ctx := context.Background()

	// GIVEN: Two bills saved out of ID order
	require.NoError(t, s.SaveBill(ctx, factory.BillRecord{ID: "b2", UserID: "u1", Name: "Phone", Amount: factory.Float(85)}))
	require.NoError(t, s.SaveBill(ctx, factory.BillRecord{ID: "b1", UserID: "u1", Name: "Rent", Amount: factory.Float(1500)}))

	// WHEN: Listing
	bills, err := s.ListBills(ctx, "u1")

	// THEN: Both come back ordered by ID
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "b1", bills[0].ID)
	assert.Equal(t, "Rent", bills[0].Name)
	assert.Equal(t, 1500.0, *bills[0].Amount)
	assert.Equal(t, "b2", bills[1].ID)
}

func testUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveIncome(ctx, factory.IncomeRecord{ID: "pay", UserID: "u1", Amount: factory.Float(2000), Frequency: "biweekly"}))
	require.NoError(t, s.SaveIncome(ctx, factory.IncomeRecord{ID: "pay", UserID: "u1", Amount: factory.Float(2200), Frequency: "monthly"}))

	income, err := s.ListIncome(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, 2200.0, *income[0].Amount)
	assert.Equal(t, "monthly", income[0].Frequency)
}

func testPerUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{ID: "a1", UserID: "u1", CurrentBalance: factory.Float(10)}))
	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{ID: "a2", UserID: "u2", CurrentBalance: factory.Float(20)}))

	u1, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, u1, 1)
	assert.Equal(t, "a1", u1[0].ID)

	none, err := s.ListAccounts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	// IDs are scoped per user: the same ID under two users is two records.
	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{ID: "chk", UserID: "u1", CurrentBalance: factory.Float(1)}))
	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{ID: "chk", UserID: "u2", CurrentBalance: factory.Float(2)}))

	u1, err = s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, u1, 2)
	u2, err := s.ListAccounts(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, u2, 2)
	assert.Equal(t, "chk", u2[1].ID)
	assert.Equal(t, 2.0, *u2[1].CurrentBalance)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveTransfer(ctx, factory.TransferRecord{ID: "t1", UserID: "u1", Amount: factory.Float(50)}))

	// Another user cannot delete it.
	err := s.DeleteTransfer(ctx, "u2", "t1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, generic.IsNotFound(err))

	require.NoError(t, s.DeleteTransfer(ctx, "u1", "t1"))
	transfers, err := s.ListTransfers(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, transfers)

	assert.ErrorIs(t, s.DeleteTransfer(ctx, "u1", "t1"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAccount(ctx, "u1", "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteIncome(ctx, "u1", "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBill(ctx, "u1", "missing"), store.ErrNotFound)
}

func testOptionalFields(t *testing.T, s store.Store) {
	ctx := context.Background()
	inactive := false

	// GIVEN: Records with nil and explicit optional fields
	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{ID: "a1", UserID: "u1"}))
	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{
		ID: "a2", UserID: "u1", Type: factory.AccountTypeCreditCard,
		CurrentBalance: factory.Float(900), APR: factory.Float(21.5), PaymentDueDay: factory.Int(9),
	}))
	require.NoError(t, s.SaveBill(ctx, factory.BillRecord{ID: "b1", UserID: "u1", Amount: factory.Float(5), IsActive: &inactive}))

	// THEN: nil stays nil and values survive
	accounts, err := s.ListAccounts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Nil(t, accounts[0].CurrentBalance)
	assert.Nil(t, accounts[0].IncludeInSpendable)
	assert.True(t, accounts[1].IsCreditCard())
	require.NotNil(t, accounts[1].PaymentDueDay)
	assert.Equal(t, 9, *accounts[1].PaymentDueDay)

	bills, err := s.ListBills(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	require.NotNil(t, bills[0].IsActive)
	assert.False(t, *bills[0].IsActive)
}

func testUsersAndReset(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveBill(ctx, factory.BillRecord{ID: "b1", UserID: "zoe", Amount: factory.Float(1)}))
	require.NoError(t, s.SaveIncome(ctx, factory.IncomeRecord{ID: "i1", UserID: "amir", Amount: factory.Float(1)}))
	require.NoError(t, s.SaveAccount(ctx, factory.AccountRecord{ID: "a1", UserID: "zoe"}))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"amir", "zoe"}, users)

	require.NoError(t, s.Reset(ctx))
	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func testLoadSave(t *testing.T, s store.Store) {
	ctx := context.Background()

	records := factory.Records{
		Accounts:  []factory.AccountRecord{{ID: "chk", CurrentBalance: factory.Float(1000)}},
		Income:    []factory.IncomeRecord{{ID: "pay", Amount: factory.Float(2000), Frequency: "biweekly", NextPayDate: "2025-03-07"}},
		Bills:     []factory.BillRecord{{ID: "rent", Amount: factory.Float(1500), Frequency: "monthly", DueDate: "2025-03-01"}},
		Transfers: []factory.TransferRecord{{ID: "sweep", Amount: factory.Float(100), FromAccountID: "chk", ToAccountID: "sav"}},
	}

	// Records without a user are assigned to the one being saved.
	require.NoError(t, store.SaveRecords(ctx, s, "u1", records))

	loaded, err := store.LoadRecords(ctx, s, "u1")
	require.NoError(t, err)
	require.Len(t, loaded.Accounts, 1)
	require.Len(t, loaded.Income, 1)
	require.Len(t, loaded.Bills, 1)
	require.Len(t, loaded.Transfers, 1)
	assert.Equal(t, "u1", loaded.Bills[0].UserID)
	assert.Equal(t, "2025-03-01", loaded.Bills[0].DueDate)

	empty, err := store.LoadRecords(ctx, s, "u2")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
