package reports

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/catalogs/counterparty"
	"kantina/internal/domain/documents/debtdoc"
	"kantina/internal/domain/registers/debt"
)

// SupplierAging computes the supplier debt aging report as of cutoff:
// outstanding document remainders per supplier, grouped into the four
// age buckets, oldest-first settlement applied.
func (s *Service) SupplierAging(ctx context.Context, snap *Snapshot, cutoff time.Time) (*AgingReport, error) {
	ctx, span := s.tracer.Start(ctx, "reports.SupplierAging")
	defer span.End()

	return s.aging(ctx, snap, cutoff, snap.Suppliers, snap.SupplierDebtStream(), snap.SupplierPayments)
}

// ClientAging computes the client debt aging report as of cutoff.
func (s *Service) ClientAging(ctx context.Context, snap *Snapshot, cutoff time.Time) (*AgingReport, error) {
	ctx, span := s.tracer.Start(ctx, "reports.ClientAging")
	defer span.End()

	return s.aging(ctx, snap, cutoff, snap.Clients, snap.ClientDebtStream(), snap.ClientPayments)
}

func (s *Service) aging(ctx context.Context, snap *Snapshot, cutoff time.Time, parties []*counterparty.Counterparty, docs []debtdoc.Document, payments []*debtdoc.Payment) (*AgingReport, error) {
	if !cutoff.IsZero() {
		cutoff = endOfDay(cutoff)
	}
	if err := validateCutoff(cutoff, earliestDate(docs, payments)); err != nil {
		return nil, err
	}

	span := trace.SpanFromContext(ctx)
	report := &AgingReport{Cutoff: cutoff, Total: types.Zero()}
	for _, cp := range sortedParties(parties) {
		alloc := debt.Allocate(cp.ID, cp.InitialBalance, docs, payments, cutoff)
		aging := debt.BuildAging(alloc)
		if types.IsZeroMoney(aging.Total()) {
			continue
		}

		byID := make(map[id.ID]debtdoc.Document, len(alloc.Documents))
		for _, state := range alloc.Documents {
			byID[state.Doc.DocID()] = state.Doc
		}

		row := AgingRow{
			CounterpartyID: cp.ID,
			Name:           cp.Name,
			Total:          aging.Total(),
		}
		for b := 0; b < debt.BucketCount; b++ {
			bucket := AgingBucket{
				Label: debt.Bucket(b).Label(),
				Total: aging.Totals[b],
			}
			for _, entry := range aging.Entries[b] {
				doc := AgingDocument{
					DocID:            entry.DocID,
					DocNumber:        entry.DocNumber,
					Date:             entry.Date,
					Remaining:        entry.Remaining,
					IsInitialBalance: entry.IsInitialBalance,
				}
				if src, ok := byID[entry.DocID]; ok && !entry.IsInitialBalance {
					doc.Lines = s.lineItems(snap, src)
				}
				bucket.Documents = append(bucket.Documents, doc)
			}
			row.Buckets[b] = bucket
		}
		report.Rows = append(report.Rows, row)
		report.Total = report.Total.Add(row.Total)
	}

	span.SetAttributes(attribute.Int("rows", len(report.Rows)))
	s.log.WithContext(ctx).Debugw("aging report built",
		"cutoff", cutoff.Format("2006-01-02"),
		"rows", len(report.Rows),
	)
	return report, nil
}

func (s *Service) lineItems(snap *Snapshot, doc debtdoc.Document) []ReportLineItem {
	src := doc.LineItems()
	if len(src) == 0 {
		return nil
	}
	items := make([]ReportLineItem, 0, len(src))
	for _, li := range src {
		items = append(items, ReportLineItem{
			ProductID:   li.ProductID,
			ProductName: snap.ProductName(li.ProductID),
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Amount:      li.Amount,
		})
	}
	return items
}

// sortedParties orders counterparties by name, then id, for stable
// report output.
func sortedParties(parties []*counterparty.Counterparty) []*counterparty.Counterparty {
	out := make([]*counterparty.Counterparty, len(parties))
	copy(out, parties)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func earliestDate(docs []debtdoc.Document, payments []*debtdoc.Payment) time.Time {
	var earliest time.Time
	for _, d := range docs {
		if earliest.IsZero() || d.DocDate().Before(earliest) {
			earliest = d.DocDate()
		}
	}
	for _, p := range payments {
		if earliest.IsZero() || p.Date.Before(earliest) {
			earliest = p.Date
		}
	}
	return earliest
}
