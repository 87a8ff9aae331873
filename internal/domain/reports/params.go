package reports

import (
	"time"

	"kantina/internal/core/apperror"
	"kantina/internal/core/id"
)

// TurnoverParams selects the turnover reporting period. From is widened
// to the start of its day and To to the end of its day, so passing the
// same date for both covers that whole day.
type TurnoverParams struct {
	From        time.Time
	To          time.Time
	WarehouseID *id.ID
}

func (p *TurnoverParams) normalize() {
	p.From = startOfDay(p.From)
	p.To = endOfDay(p.To)
}

func (p TurnoverParams) validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return apperror.NewValidation("report period is required")
	}
	if p.To.Before(p.From) {
		return apperror.NewValidation("report period end is before its start")
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// validateCutoff rejects a zero cutoff and a cutoff dated before every
// document in the stream. Such a cutoff is an operator error, not a
// request for an empty report.
func validateCutoff(cutoff time.Time, earliest time.Time) error {
	if cutoff.IsZero() {
		return apperror.NewValidation("cutoff date is required")
	}
	if !earliest.IsZero() && cutoff.Before(earliest) {
		return apperror.NewValidation("cutoff date precedes the earliest recorded document")
	}
	return nil
}
