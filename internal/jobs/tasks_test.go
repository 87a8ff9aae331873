package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kantina/internal/core/entity"
	"kantina/internal/core/types"
	"kantina/internal/domain/catalogs/counterparty"
	"kantina/internal/domain/catalogs/product"
	"kantina/internal/domain/documents/stockdoc"
	"kantina/internal/domain/reports"
	"kantina/pkg/logger"
)

type stubSnapshots struct {
	snap *reports.Snapshot
}

func (s *stubSnapshots) Snapshot(context.Context) (*reports.Snapshot, error) {
	return s.snap, nil
}

type mapCache map[string][]byte

func (c mapCache) Set(_ context.Context, key string, payload []byte) { c[key] = payload }

func warmupFixture() *reports.Snapshot {
	flour := product.New("P-001", "Flour", "kg")
	alfa := counterparty.New(counterparty.KindSupplier, "S-001", "Alfa")
	receipt := &stockdoc.Receipt{
		Document:   entity.NewDocument("R-1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		SupplierID: alfa.ID,
		Lines: []stockdoc.ReceiptLine{
			{ProductID: flour.ID, Quantity: types.MustQty("100"), UnitPrice: types.MustMoney("10")},
		},
	}
	receipt.Status = entity.StatusConfirmed
	return &reports.Snapshot{
		Version:       7,
		Products:      []*product.Product{flour},
		Suppliers:     []*counterparty.Counterparty{alfa},
		GoodsReceipts: []*stockdoc.Receipt{receipt},
	}
}

func TestWarmFillsCacheWithHandlerKeys(t *testing.T) {
	snap := warmupFixture()
	cache := mapCache{}
	h := NewWarmupHandler(reports.NewService(logger.Default()), &stubSnapshots{snap: snap}, cache, logger.Default())

	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, h.Warm(context.Background(), day))

	for _, name := range []string{"supplier-aging", "client-aging", "supplier-balances", "client-balances"} {
		key := fmt.Sprintf("%d:%s:2025-06-30", snap.Version, name)
		payload, ok := cache[key]
		require.True(t, ok, "missing %s", key)
		require.True(t, json.Valid(payload))
	}
}

func TestProcessTaskParsesDate(t *testing.T) {
	snap := warmupFixture()
	cache := mapCache{}
	h := NewWarmupHandler(reports.NewService(logger.Default()), &stubSnapshots{snap: snap}, cache, logger.Default())

	task, err := NewReportWarmupTask(ReportWarmupPayload{Date: "2025-06-30"})
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.NotEmpty(t, cache)
}
