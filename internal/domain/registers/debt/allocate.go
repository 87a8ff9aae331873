// Package debt provides the counterparty settlement register: payments are
// pooled and applied against outstanding debt oldest-first, starting with
// the counterparty's initial balance, and the residue is classified into
// aging buckets.
package debt

import (
	"time"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/documents/debtdoc"
)

// DocumentState is one debt-creating document after settlement.
type DocumentState struct {
	Doc       debtdoc.Document
	Total     types.Money
	Paid      types.Money
	Remainder types.Money
}

// Allocation is the settled state of one counterparty as of a cutoff.
type Allocation struct {
	CounterpartyID id.ID
	Cutoff         time.Time

	// InitialBalance is the counterparty's configured opening debt.
	InitialBalance types.Money

	// InitialRemainder is what is left of the initial balance after
	// settlement. A negative (credit) initial balance is never offset by
	// the pool; it stays negative and reduces the outstanding total.
	InitialRemainder types.Money

	// Documents are the debt-creating documents in date order with their
	// settled state.
	Documents []DocumentState

	// Credits are debt-reducing documents (returns, negative
	// adjustments); their absolute totals joined the settlement pool.
	Credits []debtdoc.Document

	// Pool is the total settlement pool (payments plus credits);
	// PoolRemaining is what was left after the forward pass.
	Pool          types.Money
	PoolRemaining types.Money

	// Outstanding = InitialRemainder + Σ document remainders.
	Outstanding types.Money
}

// Allocate settles a counterparty's debt as of cutoff. docs must already be
// confirmed-only and sorted by date ascending (debtdoc.Stream does); the
// pool is applied in a single forward pass, oldest first, after the
// initial balance. Payments and documents dated after cutoff are ignored.
func Allocate(counterpartyID id.ID, initialBalance types.Money, docs []debtdoc.Document, payments []*debtdoc.Payment, cutoff time.Time) *Allocation {
	alloc := &Allocation{
		CounterpartyID:   counterpartyID,
		Cutoff:           cutoff,
		InitialBalance:   initialBalance,
		InitialRemainder: initialBalance,
	}

	// 1. Pool all payments up to the cutoff.
	pool := types.Zero()
	for _, p := range payments {
		if p.CounterpartyID != counterpartyID || p.Date.After(cutoff) {
			continue
		}
		pool = pool.Add(p.Amount)
	}

	// Debt-reducing documents settle oldest debt the same way payments
	// do, so their absolute totals join the pool.
	inCutoff := make([]debtdoc.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.CounterpartyID() != counterpartyID || doc.DocDate().After(cutoff) {
			continue
		}
		total := doc.SignedTotal()
		if total.IsPositive() {
			inCutoff = append(inCutoff, doc)
			continue
		}
		pool = pool.Add(total.Neg())
		alloc.Credits = append(alloc.Credits, doc)
	}
	alloc.Pool = pool

	// 2. The initial balance is the oldest outstanding item: settle it
	// before any dated document. Credit balances are skipped.
	if initialBalance.IsPositive() {
		paid := types.MinMoney(pool, initialBalance)
		alloc.InitialRemainder = initialBalance.Sub(paid)
		pool = pool.Sub(paid)
	}

	// 3. Forward pass over debt-creating documents in date order.
	outstanding := alloc.InitialRemainder
	for _, doc := range inCutoff {
		total := doc.SignedTotal()
		paid := types.MinMoney(pool, total)
		remainder := total.Sub(paid)
		pool = pool.Sub(paid)

		alloc.Documents = append(alloc.Documents, DocumentState{
			Doc:       doc,
			Total:     total,
			Paid:      paid,
			Remainder: remainder,
		})
		outstanding = outstanding.Add(remainder)
	}

	alloc.PoolRemaining = pool
	alloc.Outstanding = outstanding
	return alloc
}
