package cashflow

import (
	"github.com/shopspring/decimal"
	"github.com/warp/cashflow-engine/generic"
)

// Status is the health tier of a day's balance relative to the safety buffer.
type Status string

const (
	StatusGreen  Status = "green"  // >= 2x buffer
	StatusYellow Status = "yellow" // >= 1.5x buffer
	StatusOrange Status = "orange" // >= buffer
	StatusRed    Status = "red"    // below buffer
)

var (
	two         = decimal.NewFromInt(2)
	oneAndAHalf = decimal.NewFromFloat(1.5)
)

// Classify maps a balance to a status. The buffer must already have passed
// ValidateSafetyBuffer.
func Classify(balance, safetyBuffer generic.Amount) Status {
	switch {
	case balance.GreaterOrEqual(safetyBuffer.Mul(two)):
		return StatusGreen
	case balance.GreaterOrEqual(safetyBuffer.Mul(oneAndAHalf)):
		return StatusYellow
	case balance.GreaterOrEqual(safetyBuffer):
		return StatusOrange
	default:
		return StatusRed
	}
}

// ValidateSafetyBuffer rejects zero and negative buffers.
func ValidateSafetyBuffer(buffer generic.Amount) error {
	if !buffer.IsPositive() {
		return &generic.ConfigError{Field: "safety buffer", Value: buffer.String(), Err: generic.ErrInvalidSafetyBuffer}
	}
	return nil
}
