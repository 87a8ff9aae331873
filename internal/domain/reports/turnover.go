package reports

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"kantina/internal/domain/registers/batch"
)

// Turnover computes the stock turnover statement: per-product opening
// balance, period debit and credit, and closing balance, derived by
// replaying every confirmed stock document dated at or before the
// period end. Rows are ordered by product name, then id.
func (s *Service) Turnover(ctx context.Context, snap *Snapshot, params TurnoverParams) (*TurnoverReport, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	params.normalize()

	ctx, span := s.tracer.Start(ctx, "reports.Turnover")
	defer span.End()
	span.SetAttributes(
		attribute.String("period.from", params.From.Format("2006-01-02")),
		attribute.String("period.to", params.To.Format("2006-01-02")),
	)

	proc := batch.NewProcessor()
	result, err := proc.Replay(snap.StockStream(params.To))
	if err != nil {
		return nil, err
	}

	agg := batch.NewAggregator(params.From, params.WarehouseID)
	agg.Fold(result.Movements)

	report := &TurnoverReport{
		From:        params.From,
		To:          params.To,
		WarehouseID: params.WarehouseID,
	}
	for _, row := range agg.Rows() {
		out := TurnoverRow{
			ProductID:    row.ProductID,
			ProductName:  snap.ProductName(row.ProductID),
			Unit:         snap.ProductUnit(row.ProductID),
			OpeningQty:   row.OpeningQty,
			OpeningValue: row.OpeningValue,
			DebitQty:     row.DebitQty,
			DebitValue:   row.DebitValue,
			CreditQty:    row.CreditQty,
			CreditValue:  row.CreditValue,
			ClosingQty:   row.ClosingQty(),
			ClosingValue: row.ClosingValue(),
		}
		for _, m := range row.Details {
			out.Details = append(out.Details, TurnoverDetail{
				Date:          m.Date,
				DocNumber:     m.DocNumber,
				DocKind:       string(m.DocKind),
				WarehouseID:   m.WarehouseID,
				WarehouseName: snap.WarehouseName(m.WarehouseID),
				QtyDelta:      m.QtyDelta,
				ValueDelta:    m.ValueDelta,
			})
		}
		report.Rows = append(report.Rows, out)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := report.Rows[i], report.Rows[j]
		if a.ProductName != b.ProductName {
			return a.ProductName < b.ProductName
		}
		return a.ProductID.String() < b.ProductID.String()
	})

	for _, sf := range result.Shortfalls {
		if sf.Date.After(params.To) {
			continue
		}
		s.log.WithContext(ctx).Warnw("stock shortfall during replay",
			"doc_number", sf.DocNumber,
			"product_id", sf.ProductID,
			"unmet", sf.Unmet,
		)
		report.Shortfalls = append(report.Shortfalls, ShortfallNote{
			Date:          sf.Date,
			DocNumber:     sf.DocNumber,
			DocKind:       string(sf.DocKind),
			ProductID:     sf.ProductID,
			ProductName:   snap.ProductName(sf.ProductID),
			WarehouseID:   sf.WarehouseID,
			WarehouseName: snap.WarehouseName(sf.WarehouseID),
			Requested:     sf.Requested,
			Consumed:      sf.Consumed,
			Unmet:         sf.Unmet,
		})
	}
	return report, nil
}
