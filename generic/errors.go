/*
errors.go - Centralized error types for the forecasting engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - Non-positive safety buffer, bad horizon, bad dates
  2. Input errors - Non-finite money values at the float boundary
  3. Fatal errors - No starting balance can be computed
  4. Store errors - Missing records

USER INPUT IN SCENARIOS:
  Hypothetical-expense mistakes (zero, negative, NaN) are NOT errors. The
  scenario engine returns a result marked as not evaluated with a reason.

USAGE:
    if errors.Is(err, generic.ErrNoStartingBalance) {
        // refuse to render a forecast at all
    }

SEE ALSO:
  - cashflow/forecast.go: Wraps these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSafetyBuffer is returned when the safety buffer is zero or negative.
	ErrInvalidSafetyBuffer = errors.New("safety buffer must be positive")

	// ErrInvalidHorizon is returned when the forecast horizon is shorter than one day.
	ErrInvalidHorizon = errors.New("horizon must be at least one day")

	// ErrNoStartingBalance is returned when no spendable account yields a balance.
	// Continuing would fabricate a forecast from nothing.
	ErrNoStartingBalance = errors.New("cannot compute starting balance")

	// ErrNonFiniteAmount is returned when a money value is NaN or infinite.
	ErrNonFiniteAmount = errors.New("amount is not a finite number")

	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMissingToday is returned when the reference day was not supplied.
	ErrMissingToday = errors.New("reference day (today) is required")

	// ErrNotFound is returned when a stored record does not exist.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError names the configuration field that was rejected.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// StartingBalanceError explains why the starting balance could not be computed.
type StartingBalanceError struct {
	Accounts int      // accounts supplied
	Skipped  []string // spendable accounts without a usable balance
}

func (e *StartingBalanceError) Error() string {
	return fmt.Sprintf("cannot compute starting balance: no spendable account among %d has a usable balance (skipped: %s)",
		e.Accounts, strings.Join(e.Skipped, ", "))
}

func (e *StartingBalanceError) Unwrap() error { return ErrNoStartingBalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSafetyBuffer) ||
		errors.Is(err, ErrInvalidHorizon) ||
		errors.Is(err, ErrNonFiniteAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrMissingToday)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
