package dto

import (
	"time"

	"kantina/internal/core/apperror"
	"kantina/internal/core/id"
	"kantina/internal/domain/reports"
)

// dateLayout is the wire format for report dates.
const dateLayout = "2006-01-02"

// TurnoverRequest selects the turnover report period.
type TurnoverRequest struct {
	From        string `form:"from" binding:"required"`
	To          string `form:"to" binding:"required"`
	WarehouseID string `form:"warehouseId"`
}

// ToParams parses and validates the request into report parameters.
func (r TurnoverRequest) ToParams() (reports.TurnoverParams, error) {
	var params reports.TurnoverParams

	from, err := time.Parse(dateLayout, r.From)
	if err != nil {
		return params, apperror.NewValidation("invalid from date, expected YYYY-MM-DD").
			WithDetail("field", "from")
	}
	to, err := time.Parse(dateLayout, r.To)
	if err != nil {
		return params, apperror.NewValidation("invalid to date, expected YYYY-MM-DD").
			WithDetail("field", "to")
	}
	params.From = from
	params.To = to

	if r.WarehouseID != "" {
		whID, err := id.Parse(r.WarehouseID)
		if err != nil {
			return params, apperror.NewValidation("invalid warehouse id").
				WithDetail("field", "warehouseId")
		}
		params.WarehouseID = &whID
	}
	return params, nil
}

// CutoffRequest selects the as-of date for aging and balance reports.
type CutoffRequest struct {
	Cutoff string `form:"cutoff" binding:"required"`
}

// ToTime parses the cutoff date.
func (r CutoffRequest) ToTime() (time.Time, error) {
	cutoff, err := time.Parse(dateLayout, r.Cutoff)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid cutoff date, expected YYYY-MM-DD").
			WithDetail("field", "cutoff")
	}
	return cutoff, nil
}
