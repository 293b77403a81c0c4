package generic_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashflow-engine/generic"
)

func TestAmountFromFloat_RejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := generic.AmountFromFloat(v)
		assert.ErrorIs(t, err, generic.ErrNonFiniteAmount)
	}

	a, err := generic.AmountFromFloat(19.99)
	require.NoError(t, err)
	assert.Equal(t, "19.99", a.String())
}

func TestAmount_DecimalArithmetic_NoDrift(t *testing.T) {
	// GIVEN: 0.10 added a thousand times
	// WHEN: Summing with Amount
	// THEN: The total is exactly 100.00

	total := generic.Zero
	dime := generic.MustAmount("0.10")
	for i := 0; i < 1000; i++ {
		total = total.Add(dime)
	}
	assert.True(t, total.Equal(generic.NewAmountFromInt(100)), "got %s", total)
}

func TestAmount_MinMax(t *testing.T) {
	a, b := generic.NewAmountFromInt(5), generic.NewAmountFromInt(-3)

	assert.Equal(t, "-3.00", a.Min(b).String())
	assert.Equal(t, "5.00", a.Max(b).String())
	assert.Equal(t, "2.00", generic.Sum(a, b).String())
	assert.Equal(t, "12.34", generic.NewAmountFromCents(1234).String())
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Balance generic.Amount `json:"balance"`
	}{generic.MustAmount("12.5")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"balance": 12.50}`, string(data))

	var decoded struct {
		Balance generic.Amount `json:"balance"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"balance": "99.95"}`), &decoded))
	assert.Equal(t, "99.95", decoded.Balance.String())
}

func TestErrors_Classification(t *testing.T) {
	cfgErr := &generic.ConfigError{Field: "safety buffer", Value: "0.00", Err: generic.ErrInvalidSafetyBuffer}
	assert.True(t, generic.IsClientError(cfgErr))
	assert.ErrorIs(t, cfgErr, generic.ErrInvalidSafetyBuffer)

	sbErr := &generic.StartingBalanceError{Accounts: 2, Skipped: []string{"a", "b"}}
	assert.ErrorIs(t, sbErr, generic.ErrNoStartingBalance)
	assert.False(t, generic.IsClientError(sbErr))
	assert.Contains(t, sbErr.Error(), "a, b")

	assert.True(t, generic.IsNotFound(generic.ErrNotFound))
}
