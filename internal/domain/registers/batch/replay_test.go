package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kantina/internal/core/entity"
	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/documents/stockdoc"
)

func confirmedDoc(number string, date time.Time) entity.Document {
	doc := entity.NewDocument(number, date)
	doc.Status = entity.StatusConfirmed
	return doc
}

func receiptOf(number string, date time.Time, warehouseID, productID id.ID, qty, price string) *stockdoc.Receipt {
	return &stockdoc.Receipt{
		Document:    confirmedDoc(number, date),
		WarehouseID: warehouseID,
		Lines: []stockdoc.ReceiptLine{{
			ProductID: productID,
			Quantity:  types.MustQty(qty),
			UnitPrice: types.MustMoney(price),
		}},
	}
}

func writeOffOf(number string, date time.Time, warehouseID, productID id.ID, qty string) *stockdoc.WriteOff {
	return &stockdoc.WriteOff{
		Document:    confirmedDoc(number, date),
		WarehouseID: warehouseID,
		Lines: []stockdoc.QtyLine{{
			ProductID: productID,
			Quantity:  types.MustQty(qty),
		}},
	}
}

func TestReplayReceiptThenWriteOff(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	docs := stockdoc.Stream(
		[]*stockdoc.Receipt{receiptOf("R-1", day(1), warehouseID, productID, "100", "10")},
		[]*stockdoc.WriteOff{writeOffOf("W-1", day(5), warehouseID, productID, "40")},
		nil, nil,
	)

	processor := NewProcessor()
	result, err := processor.Replay(docs)
	require.NoError(t, err)
	require.Empty(t, result.Shortfalls)
	require.Len(t, result.Movements, 2)

	agg := NewAggregator(day(0), nil)
	agg.Fold(result.Movements)
	rows := agg.Rows()
	require.Len(t, rows, 1)

	row := rows[0]
	require.True(t, row.DebitQty.Equal(types.MustQty("100")))
	require.True(t, row.DebitValue.Equal(types.MustMoney("1000")))
	require.True(t, row.CreditQty.Equal(types.MustQty("40")))
	require.True(t, row.CreditValue.Equal(types.MustMoney("400")))
	require.True(t, row.ClosingQty().Equal(types.MustQty("60")))
	require.True(t, row.ClosingValue().Equal(types.MustMoney("600")))
}

func TestStreamDropsUnconfirmedDocuments(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	draft := receiptOf("R-DRAFT", day(1), warehouseID, productID, "100", "10")
	draft.Status = entity.StatusDraft
	cancelled := receiptOf("R-CANCEL", day(2), warehouseID, productID, "50", "10")
	cancelled.Status = entity.StatusCancelled

	docs := stockdoc.Stream([]*stockdoc.Receipt{draft, cancelled}, nil, nil, nil)
	require.Empty(t, docs)
}

func TestTransferConservesQuantityAndValue(t *testing.T) {
	productID := id.New()
	src := id.New()
	dst := id.New()

	transfer := &stockdoc.Transfer{
		Document:        confirmedDoc("T-1", day(3)),
		FromWarehouseID: src,
		ToWarehouseID:   dst,
		Lines: []stockdoc.QtyLine{{
			ProductID: productID,
			Quantity:  types.MustQty("30"),
		}},
	}

	docs := stockdoc.Stream(
		[]*stockdoc.Receipt{
			receiptOf("R-1", day(1), src, productID, "20", "10"),
			receiptOf("R-2", day(2), src, productID, "20", "15"),
		},
		nil,
		[]*stockdoc.Transfer{transfer},
		nil,
	)

	processor := NewProcessor()
	result, err := processor.Replay(docs)
	require.NoError(t, err)
	require.Empty(t, result.Shortfalls)

	ledger := processor.Ledger()

	// System-wide totals unchanged by the transfer.
	totalQty := ledger.Quantity(productID, src).Add(ledger.Quantity(productID, dst))
	totalValue := ledger.Value(productID, src).Add(ledger.Value(productID, dst))
	require.True(t, totalQty.Equal(types.MustQty("40")))
	require.True(t, totalValue.Equal(types.MustMoney("500")), "20×10 + 20×15")

	// Cost basis preserved per slice: 20@10 and 10@15 arrived at dst.
	dstLots := ledger.Lots(productID, dst)
	require.Len(t, dstLots, 2)
	require.True(t, dstLots[0].UnitCost.Equal(types.MustMoney("10")))
	require.True(t, dstLots[1].UnitCost.Equal(types.MustMoney("15")))

	// Derived batch ids keep the lineage.
	require.Equal(t, "R-1/1-T-1", dstLots[0].BatchID)
	require.Equal(t, "R-2/1-T-1", dstLots[1].BatchID)

	// Transfer emits a credit at source and a debit at destination, both
	// valued at original cost.
	var credit, debit *Movement
	for i := range result.Movements {
		m := &result.Movements[i]
		if m.DocKind != DocKindTransfer {
			continue
		}
		if m.WarehouseID == src {
			credit = m
		} else {
			debit = m
		}
	}
	require.NotNil(t, credit)
	require.NotNil(t, debit)
	require.True(t, credit.ValueDelta.Equal(types.MustMoney("-350")), "20×10 + 10×15")
	require.True(t, debit.ValueDelta.Equal(types.MustMoney("350")))
}

func TestReplayShortfallIsSurfaced(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	docs := stockdoc.Stream(
		[]*stockdoc.Receipt{receiptOf("R-1", day(1), warehouseID, productID, "10", "4")},
		[]*stockdoc.WriteOff{writeOffOf("W-1", day(2), warehouseID, productID, "15")},
		nil, nil,
	)

	processor := NewProcessor()
	result, err := processor.Replay(docs)
	require.NoError(t, err)

	require.Len(t, result.Shortfalls, 1)
	sf := result.Shortfalls[0]
	require.Equal(t, "W-1", sf.DocNumber)
	require.Equal(t, productID, sf.ProductID)
	require.True(t, sf.Requested.Equal(types.MustQty("15")))
	require.True(t, sf.Consumed.Equal(types.MustQty("10")))
	require.True(t, sf.Unmet.Equal(types.MustQty("5")))

	// The credit is valued only for what was actually consumed.
	var credit *Movement
	for i := range result.Movements {
		if result.Movements[i].DocKind == DocKindWriteOff {
			credit = &result.Movements[i]
		}
	}
	require.NotNil(t, credit)
	require.True(t, credit.QtyDelta.Equal(types.MustQty("-10")))
	require.True(t, credit.ValueDelta.Equal(types.MustMoney("-40")))
}

func TestAggregatorSplitsOpeningFromPeriod(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	docs := stockdoc.Stream(
		[]*stockdoc.Receipt{
			receiptOf("R-0", day(1), warehouseID, productID, "50", "8"),
			receiptOf("R-1", day(10), warehouseID, productID, "20", "9"),
		},
		[]*stockdoc.WriteOff{writeOffOf("W-1", day(11), warehouseID, productID, "30")},
		nil, nil,
	)

	processor := NewProcessor()
	result, err := processor.Replay(docs)
	require.NoError(t, err)

	agg := NewAggregator(day(10), nil)
	agg.Fold(result.Movements)
	rows := agg.Rows()
	require.Len(t, rows, 1)

	row := rows[0]
	require.True(t, row.OpeningQty.Equal(types.MustQty("50")))
	require.True(t, row.OpeningValue.Equal(types.MustMoney("400")))
	require.True(t, row.DebitQty.Equal(types.MustQty("20")))
	require.True(t, row.CreditQty.Equal(types.MustQty("30")))
	require.True(t, row.CreditValue.Equal(types.MustMoney("240")), "30 units FIFO at the older cost of 8")
	require.True(t, row.ClosingQty().Equal(types.MustQty("40")))

	// Detail log covers only in-period movements.
	require.Len(t, row.Details, 2)
	require.Equal(t, "R-1", row.Details[0].DocNumber)
	require.Equal(t, "W-1", row.Details[1].DocNumber)
}

func TestAggregatorWarehouseFilter(t *testing.T) {
	productID := id.New()
	whA := id.New()
	whB := id.New()

	docs := stockdoc.Stream(
		[]*stockdoc.Receipt{
			receiptOf("R-A", day(1), whA, productID, "10", "5"),
			receiptOf("R-B", day(1), whB, productID, "7", "5"),
		},
		nil, nil, nil,
	)

	processor := NewProcessor()
	result, err := processor.Replay(docs)
	require.NoError(t, err)

	agg := NewAggregator(day(0), &whA)
	agg.Fold(result.Movements)
	rows := agg.Rows()
	require.Len(t, rows, 1)
	require.True(t, rows[0].DebitQty.Equal(types.MustQty("10")), "warehouse B movement filtered out")
}
