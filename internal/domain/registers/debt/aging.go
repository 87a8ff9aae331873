package debt

import (
	"math"
	"time"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
)

// Bucket is one of the four aging classes.
type Bucket int

const (
	BucketUpTo30 Bucket = iota // 0–30 days
	Bucket31To60               // 31–60 days
	Bucket61To90               // 61–90 days
	BucketOver90               // 90+ days, also holds the initial balance
)

// BucketCount is the number of aging buckets.
const BucketCount = 4

// Label returns the bucket's day-range label.
func (b Bucket) Label() string {
	switch b {
	case BucketUpTo30:
		return "0-30"
	case Bucket31To60:
		return "31-60"
	case Bucket61To90:
		return "61-90"
	default:
		return "90+"
	}
}

// BucketEntry is one unsettled document inside a bucket.
type BucketEntry struct {
	DocID     id.ID
	DocNumber string
	Date      time.Time
	Remaining types.Money

	// IsInitialBalance marks the pseudo-entry for the counterparty's
	// opening debt.
	IsInitialBalance bool
}

// Aging is the bucketed residue of an allocation. The sum over all
// buckets equals the allocation's outstanding balance within the money
// tolerance.
type Aging struct {
	Totals  [BucketCount]types.Money
	Entries [BucketCount][]BucketEntry
}

// Total sums all buckets.
func (a *Aging) Total() types.Money {
	total := types.Zero()
	for _, t := range a.Totals {
		total = total.Add(t)
	}
	return total
}

// ClassifyAge maps a document age to its bucket. Age is
// ceil((cutoff − docDate)/24h); boundaries are inclusive at 30/60/90.
func ClassifyAge(cutoff, docDate time.Time) Bucket {
	days := int(math.Ceil(cutoff.Sub(docDate).Hours() / 24))
	switch {
	case days <= 30:
		return BucketUpTo30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// BuildAging classifies an allocation's remainders into buckets.
// Remainders within the money tolerance are dropped. The initial balance
// remainder always lands in 90+, signed: a credit balance appears as a
// negative 90+ entry so the bucket partition still sums to the
// outstanding total.
func BuildAging(alloc *Allocation) *Aging {
	aging := &Aging{}
	for i := range aging.Totals {
		aging.Totals[i] = types.Zero()
	}

	if !types.IsZeroMoney(alloc.InitialRemainder) {
		aging.Totals[BucketOver90] = aging.Totals[BucketOver90].Add(alloc.InitialRemainder)
		aging.Entries[BucketOver90] = append(aging.Entries[BucketOver90], BucketEntry{
			Remaining:        alloc.InitialRemainder,
			IsInitialBalance: true,
		})
	}

	for _, state := range alloc.Documents {
		if state.Remainder.LessThanOrEqual(types.MoneyEpsilon) {
			continue
		}
		bucket := ClassifyAge(alloc.Cutoff, state.Doc.DocDate())
		aging.Totals[bucket] = aging.Totals[bucket].Add(state.Remainder)
		aging.Entries[bucket] = append(aging.Entries[bucket], BucketEntry{
			DocID:     state.Doc.DocID(),
			DocNumber: state.Doc.DocNumber(),
			Date:      state.Doc.DocDate(),
			Remaining: state.Remainder,
		})
	}

	return aging
}
