package batch

import (
	"time"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
)

// TurnoverRow accumulates one product's opening/debit/credit/closing
// position over a period. The identities
// closing_qty = opening_qty + debit_qty − credit_qty (and the same for
// value) hold by construction.
type TurnoverRow struct {
	ProductID id.ID

	OpeningQty   types.Qty
	OpeningValue types.Money
	DebitQty     types.Qty
	DebitValue   types.Money
	CreditQty    types.Qty
	CreditValue  types.Money

	// Details are the in-period movements contributing to this row, in
	// replay order.
	Details []Movement
}

// ClosingQty derives the closing quantity.
func (r *TurnoverRow) ClosingQty() types.Qty {
	return r.OpeningQty.Add(r.DebitQty).Sub(r.CreditQty)
}

// ClosingValue derives the closing value.
func (r *TurnoverRow) ClosingValue() types.Money {
	return r.OpeningValue.Add(r.DebitValue).Sub(r.CreditValue)
}

// IsZero reports whether every column of the row is zero; such rows are
// dropped from the report.
func (r *TurnoverRow) IsZero() bool {
	return r.OpeningQty.IsZero() && r.OpeningValue.IsZero() &&
		r.DebitQty.IsZero() && r.DebitValue.IsZero() &&
		r.CreditQty.IsZero() && r.CreditValue.IsZero()
}

// Aggregator folds replay movements into per-product turnover rows.
// Movements dated before the period start form the opening position;
// movements inside the period accumulate as debit or credit by sign.
type Aggregator struct {
	from time.Time

	// warehouseID narrows the report to one warehouse; nil means all.
	warehouseID *id.ID

	rows map[id.ID]*TurnoverRow
}

// NewAggregator creates an aggregator for a period starting at from.
func NewAggregator(from time.Time, warehouseID *id.ID) *Aggregator {
	return &Aggregator{
		from:        from,
		warehouseID: warehouseID,
		rows:        make(map[id.ID]*TurnoverRow),
	}
}

// Fold accumulates movements. The replay guarantees no movement is dated
// after the period end.
func (a *Aggregator) Fold(movements []Movement) {
	for _, m := range movements {
		if a.warehouseID != nil && m.WarehouseID != *a.warehouseID {
			continue
		}

		row, ok := a.rows[m.ProductID]
		if !ok {
			row = &TurnoverRow{
				ProductID:    m.ProductID,
				OpeningQty:   types.Zero(),
				OpeningValue: types.Zero(),
				DebitQty:     types.Zero(),
				DebitValue:   types.Zero(),
				CreditQty:    types.Zero(),
				CreditValue:  types.Zero(),
			}
			a.rows[m.ProductID] = row
		}

		if m.Date.Before(a.from) {
			row.OpeningQty = row.OpeningQty.Add(m.QtyDelta)
			row.OpeningValue = row.OpeningValue.Add(m.ValueDelta)
			continue
		}

		if m.QtyDelta.IsNegative() || (m.QtyDelta.IsZero() && m.ValueDelta.IsNegative()) {
			row.CreditQty = row.CreditQty.Add(m.QtyDelta.Neg())
			row.CreditValue = row.CreditValue.Add(m.ValueDelta.Neg())
		} else {
			row.DebitQty = row.DebitQty.Add(m.QtyDelta)
			row.DebitValue = row.DebitValue.Add(m.ValueDelta)
		}
		row.Details = append(row.Details, m)
	}
}

// Rows returns the accumulated rows with all-zero rows filtered out.
// Ordering is left to the report assembler.
func (a *Aggregator) Rows() []*TurnoverRow {
	out := make([]*TurnoverRow, 0, len(a.rows))
	for _, row := range a.rows {
		if row.IsZero() {
			continue
		}
		out = append(out, row)
	}
	return out
}
