package reports

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kantina/internal/core/types"
	"kantina/internal/domain/catalogs/counterparty"
	"kantina/internal/domain/documents/debtdoc"
)

// SupplierBalances computes supplier settlement balances as of cutoff,
// each row carrying the full dated transaction history with a running
// balance. The initial balance appears as the first pseudo-entry.
func (s *Service) SupplierBalances(ctx context.Context, snap *Snapshot, cutoff time.Time) (*BalanceReport, error) {
	ctx, span := s.tracer.Start(ctx, "reports.SupplierBalances")
	defer span.End()

	return s.balances(ctx, snap, cutoff, snap.Suppliers, snap.SupplierDebtStream(), snap.SupplierPayments)
}

// ClientBalances computes client settlement balances as of cutoff.
func (s *Service) ClientBalances(ctx context.Context, snap *Snapshot, cutoff time.Time) (*BalanceReport, error) {
	ctx, span := s.tracer.Start(ctx, "reports.ClientBalances")
	defer span.End()

	return s.balances(ctx, snap, cutoff, snap.Clients, snap.ClientDebtStream(), snap.ClientPayments)
}

func (s *Service) balances(ctx context.Context, snap *Snapshot, cutoff time.Time, parties []*counterparty.Counterparty, docs []debtdoc.Document, payments []*debtdoc.Payment) (*BalanceReport, error) {
	if !cutoff.IsZero() {
		cutoff = endOfDay(cutoff)
	}
	if err := validateCutoff(cutoff, earliestDate(docs, payments)); err != nil {
		return nil, err
	}

	span := trace.SpanFromContext(ctx)
	report := &BalanceReport{Cutoff: cutoff, Total: types.Zero()}
	for _, cp := range sortedParties(parties) {
		row, err := s.balanceRow(snap, cp, docs, payments, cutoff)
		if err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}
		report.Rows = append(report.Rows, *row)
		report.Total = report.Total.Add(row.Balance)
	}

	span.SetAttributes(attribute.Int("rows", len(report.Rows)))
	s.log.WithContext(ctx).Debugw("balance report built",
		"cutoff", cutoff.Format("2006-01-02"),
		"rows", len(report.Rows),
	)
	return report, nil
}

// balanceRow builds one counterparty's statement. Returns nil for a
// counterparty with a zero balance and no recorded transactions.
func (s *Service) balanceRow(snap *Snapshot, cp *counterparty.Counterparty, docs []debtdoc.Document, payments []*debtdoc.Payment, cutoff time.Time) (*BalanceRow, error) {
	var txs []BalanceTransaction
	for _, doc := range docs {
		if doc.CounterpartyID() != cp.ID || doc.DocDate().After(cutoff) {
			continue
		}
		kind, err := debtdoc.KindLabel(doc)
		if err != nil {
			return nil, err
		}
		tx := BalanceTransaction{
			Date:      doc.DocDate(),
			DocID:     doc.DocID(),
			DocNumber: doc.DocNumber(),
			Kind:      kind,
			Debit:     types.Zero(),
			Credit:    types.Zero(),
			Lines:     s.lineItems(snap, doc),
		}
		if total := doc.SignedTotal(); total.IsNegative() {
			tx.Credit = total.Neg()
		} else {
			tx.Debit = total
		}
		txs = append(txs, tx)
	}
	for _, p := range payments {
		if p.CounterpartyID != cp.ID || p.Date.After(cutoff) {
			continue
		}
		txs = append(txs, BalanceTransaction{
			Date:      p.Date,
			DocID:     p.ID,
			DocNumber: p.Number,
			Kind:      "payment",
			Debit:     types.Zero(),
			Credit:    p.Amount,
		})
	}

	if len(txs) == 0 && types.IsZeroMoney(cp.InitialBalance) {
		return nil, nil
	}

	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })

	row := &BalanceRow{CounterpartyID: cp.ID, Name: cp.Name}
	running := cp.InitialBalance
	if !types.IsZeroMoney(cp.InitialBalance) {
		initial := BalanceTransaction{
			Kind:             "initial_balance",
			Debit:            types.Zero(),
			Credit:           types.Zero(),
			Running:          running,
			IsInitialBalance: true,
		}
		if cp.InitialBalance.IsNegative() {
			initial.Credit = cp.InitialBalance.Neg()
		} else {
			initial.Debit = cp.InitialBalance
		}
		row.Transactions = append(row.Transactions, initial)
	}
	for _, tx := range txs {
		running = running.Add(tx.Debit).Sub(tx.Credit)
		tx.Running = running
		row.Transactions = append(row.Transactions, tx)
	}
	row.Balance = running
	return row, nil
}
