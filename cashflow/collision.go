package cashflow

import (
	"sort"

	"github.com/warp/cashflow-engine/generic"
)

// =============================================================================
// COLLISION DETECTION - Bills clustering on the same day
// =============================================================================

// Severity of a bill collision.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CollisionThresholds tunes DetectCollisions. Zero fields take the defaults.
type CollisionThresholds struct {
	MinBillsForWarning  int            // default 2
	MinBillsForCritical int            // default 4
	CriticalAmount      generic.Amount // default 1000; strictly exceeded => critical
}

// DefaultCollisionThresholds returns 2 / 4 / $1,000.
func DefaultCollisionThresholds() CollisionThresholds {
	return CollisionThresholds{
		MinBillsForWarning:  2,
		MinBillsForCritical: 4,
		CriticalAmount:      generic.NewAmountFromInt(1000),
	}
}

func (t CollisionThresholds) withDefaults() CollisionThresholds {
	d := DefaultCollisionThresholds()
	if t.MinBillsForWarning <= 0 {
		t.MinBillsForWarning = d.MinBillsForWarning
	}
	if t.MinBillsForCritical <= 0 {
		t.MinBillsForCritical = d.MinBillsForCritical
	}
	if !t.CriticalAmount.IsPositive() {
		t.CriticalAmount = d.CriticalAmount
	}
	return t
}

// BillCollision is a day on which several non-zero bills are due.
type BillCollision struct {
	Date        generic.Date
	Bills       []Occurrence
	BillCount   int
	TotalAmount generic.Amount
	Severity    Severity
}

// CollisionSummary aggregates the collisions of a day sequence.
type CollisionSummary struct {
	Collisions      []BillCollision // chronological
	TotalCollisions int
	WarningCount    int
	CriticalCount   int
	HighestAmount   *BillCollision // earliest day wins a tie
}

// DetectCollisions scans days for bill clusters. Zero-amount bills are
// ignored. The input is never modified, so repeated calls return equal results.
func DetectCollisions(days []CalendarDay, thresholds CollisionThresholds) CollisionSummary {
	t := thresholds.withDefaults()

	var collisions []BillCollision
	for _, day := range days {
		var bills []Occurrence
		total := generic.Zero
		for _, b := range day.Bills {
			if b.Amount.IsZero() {
				continue
			}
			bills = append(bills, b)
			total = total.Add(b.Amount)
		}
		if len(bills) < t.MinBillsForWarning {
			continue
		}

		severity := SeverityWarning
		if len(bills) >= t.MinBillsForCritical || total.GreaterThan(t.CriticalAmount) {
			severity = SeverityCritical
		}
		collisions = append(collisions, BillCollision{
			Date:        day.Date,
			Bills:       bills,
			BillCount:   len(bills),
			TotalAmount: total,
			Severity:    severity,
		})
	}

	sort.SliceStable(collisions, func(i, j int) bool {
		return collisions[i].Date.Before(collisions[j].Date)
	})

	summary := CollisionSummary{Collisions: collisions, TotalCollisions: len(collisions)}
	for i := range collisions {
		c := collisions[i]
		switch c.Severity {
		case SeverityCritical:
			summary.CriticalCount++
		default:
			summary.WarningCount++
		}
		if summary.HighestAmount == nil || c.TotalAmount.GreaterThan(summary.HighestAmount.TotalAmount) {
			highest := c
			summary.HighestAmount = &highest
		}
	}
	return summary
}
