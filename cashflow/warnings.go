package cashflow

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// WarningCode classifies a data-quality problem.
type WarningCode string

const (
	WarnUnknownFrequency  WarningCode = "unknown_frequency"
	WarnMissingAnchor     WarningCode = "missing_anchor"
	WarnMissingBalance    WarningCode = "missing_balance"
	WarnCardNotPayable    WarningCode = "card_not_payable"
	WarnUnparseableDate   WarningCode = "unparseable_date"
	WarnUnparseableAmount WarningCode = "unparseable_amount"
)

// Warning is a data-quality signal about one input record. Warnings never
// abort a forecast; a source that triggers one simply contributes nothing.
type Warning struct {
	SourceID string
	Kind     Kind
	Code     WarningCode
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", w.Kind, w.SourceID, w.Message, w.Code)
}

// sourceWarnings reports the problems that make an active source silently
// expand to nothing.
func sourceWarnings(kind Kind, src EventSource) []Warning {
	if !src.IsActive() {
		return nil
	}
	var out []Warning
	if !src.Frequency.IsKnown() {
		out = append(out, Warning{
			SourceID: src.ID, Kind: kind, Code: WarnUnknownFrequency,
			Message: fmt.Sprintf("frequency %q is not supported; source ignored", string(src.Frequency)),
		})
	}
	if src.Anchor.IsZero() {
		out = append(out, Warning{
			SourceID: src.ID, Kind: kind, Code: WarnMissingAnchor,
			Message: "no usable anchor date; source ignored",
		})
	}
	return out
}

// discardLogger is used when no logger is injected.
var discardLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()
