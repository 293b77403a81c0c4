package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/factory"
	"github.com/warp/cashflow-engine/store"
	"github.com/warp/cashflow-engine/store/sqlstore"
	"github.com/warp/cashflow-engine/store/storetest"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	// GIVEN: A file-backed database with one bill
	path := filepath.Join(t.TempDir(), "cashflow.db")
	ctx := context.Background()

	s, err := sqlstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveBill(ctx, factory.BillRecord{ID: "rent", UserID: "u1", Amount: factory.Float(1500)}))
	require.NoError(t, s.Close())

	// WHEN: Reopening (migration runs again)
	s, err = sqlstore.OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	// THEN: The bill is still there
	bills, err := s.ListBills(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "rent", bills[0].ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := sqlstore.Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestOpen_SQLiteAlias(t *testing.T) {
	s, err := sqlstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, sqlstore.DriverSQLite, s.Driver())
}

func TestRebind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"WHERE user_id = ?", "WHERE user_id = $1"},
		{"VALUES (?, ?, ?)", "VALUES ($1, $2, $3)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqlstore.Rebind(tt.in))
	}
}
