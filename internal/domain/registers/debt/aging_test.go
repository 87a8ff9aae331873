package debt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/documents/debtdoc"
)

func TestClassifyAgeBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want Bucket
	}{
		{0, BucketUpTo30},
		{1, BucketUpTo30},
		{30, BucketUpTo30},
		{31, Bucket31To60},
		{60, Bucket31To60},
		{61, Bucket61To90},
		{90, Bucket61To90},
		{91, BucketOver90},
		{365, BucketOver90},
	}
	for _, tc := range cases {
		got := ClassifyAge(cutoff, daysBefore(tc.days))
		require.Equal(t, tc.want, got, "age %d days", tc.days)
	}
}

func TestClassifyAgePartialDayRoundsUp(t *testing.T) {
	// 30 days and one hour ago: ceil gives 31 days.
	docDate := cutoff.AddDate(0, 0, -30).Add(-time.Hour)
	require.Equal(t, Bucket31To60, ClassifyAge(cutoff, docDate))
}

func TestAgingScenarioSupplierWithInitialBalance(t *testing.T) {
	supplierID := id.New()

	docs := debtdoc.Stream([]debtdoc.Document{
		supplierReceipt(supplierID, "GR-1", daysBefore(41), "1000"),
	})
	payments := []*debtdoc.Payment{
		payment(supplierID, daysBefore(10), "700"),
	}

	alloc := Allocate(supplierID, types.MustMoney("500"), docs, payments, cutoff)
	aging := BuildAging(alloc)

	require.True(t, aging.Totals[BucketUpTo30].IsZero())
	require.True(t, aging.Totals[Bucket31To60].Equal(types.MustMoney("800")))
	require.True(t, aging.Totals[Bucket61To90].IsZero())
	require.True(t, aging.Totals[BucketOver90].IsZero(), "initial balance fully settled")
	require.True(t, aging.Total().Equal(types.MustMoney("800")))

	entries := aging.Entries[Bucket31To60]
	require.Len(t, entries, 1)
	require.Equal(t, "GR-1", entries[0].DocNumber)
	require.True(t, entries[0].Remaining.Equal(types.MustMoney("800")))
}

func TestAgingInitialBalanceAlwaysLandsInOldestBucket(t *testing.T) {
	supplierID := id.New()

	// A young unpaid document plus an unpaid initial balance.
	docs := debtdoc.Stream([]debtdoc.Document{
		supplierReceipt(supplierID, "GR-1", daysBefore(5), "200"),
	})

	alloc := Allocate(supplierID, types.MustMoney("400"), docs, nil, cutoff)
	aging := BuildAging(alloc)

	require.True(t, aging.Totals[BucketOver90].Equal(types.MustMoney("400")))
	require.True(t, aging.Totals[BucketUpTo30].Equal(types.MustMoney("200")))
	require.True(t, aging.Entries[BucketOver90][0].IsInitialBalance)
}

func TestAgingPartitionSumsToOutstanding(t *testing.T) {
	supplierID := id.New()

	docs := debtdoc.Stream([]debtdoc.Document{
		supplierReceipt(supplierID, "GR-1", daysBefore(120), "100"),
		supplierReceipt(supplierID, "GR-2", daysBefore(75), "250"),
		supplierReceipt(supplierID, "GR-3", daysBefore(45), "330"),
		supplierReceipt(supplierID, "GR-4", daysBefore(3), "420"),
	})
	payments := []*debtdoc.Payment{
		payment(supplierID, daysBefore(40), "180"),
		payment(supplierID, daysBefore(2), "95"),
	}

	alloc := Allocate(supplierID, types.MustMoney("60"), docs, payments, cutoff)
	aging := BuildAging(alloc)

	diff := aging.Total().Sub(alloc.Outstanding).Abs()
	require.True(t, diff.LessThanOrEqual(types.MoneyEpsilon),
		"bucket partition must sum to outstanding, diff %s", diff)
}

func TestAgingDropsSettledDust(t *testing.T) {
	supplierID := id.New()

	docs := debtdoc.Stream([]debtdoc.Document{
		supplierReceipt(supplierID, "GR-1", daysBefore(10), "100"),
	})
	payments := []*debtdoc.Payment{
		payment(supplierID, daysBefore(5), "99.995"),
	}

	alloc := Allocate(supplierID, types.Zero(), docs, payments, cutoff)
	aging := BuildAging(alloc)

	require.True(t, aging.Total().IsZero(), "remainder within tolerance is not aged")
}
