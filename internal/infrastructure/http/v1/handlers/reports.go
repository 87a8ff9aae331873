package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"kantina/internal/domain/reports"
	"kantina/internal/infrastructure/http/v1/dto"
)

// SnapshotProvider supplies the entity snapshot reports are computed
// over.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*reports.Snapshot, error)
}

// ReportCache stores rendered report payloads, shared with the warmup
// worker.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service   *reports.Service
	snapshots SnapshotProvider
	cache     ReportCache
}

// NewReportsHandler creates a new reports handler. cache may be nil.
func NewReportsHandler(base *BaseHandler, service *reports.Service, snapshots SnapshotProvider, cache ReportCache) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		snapshots:   snapshots,
		cache:       cache,
	}
}

// GetTurnover handles GET /reports/turnover
func (h *ReportsHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TurnoverRequest
	if !h.BindQuery(c, &req) {
		return
	}
	params, err := req.ToParams()
	if err != nil {
		h.Error(c, err)
		return
	}

	snap, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	wh := ""
	if params.WarehouseID != nil {
		wh = params.WarehouseID.String()
	}
	key := fmt.Sprintf("%d:turnover:%s:%s:%s", snap.Version, req.From, req.To, wh)

	h.serve(c, key, func() (any, error) {
		return h.service.Turnover(ctx, snap, params)
	})
}

// GetSupplierAging handles GET /reports/suppliers/aging
func (h *ReportsHandler) GetSupplierAging(c *gin.Context) {
	h.cutoffReport(c, "supplier-aging", func(ctx context.Context, snap *reports.Snapshot, cutoff time.Time) (any, error) {
		return h.service.SupplierAging(ctx, snap, cutoff)
	})
}

// GetClientAging handles GET /reports/clients/aging
func (h *ReportsHandler) GetClientAging(c *gin.Context) {
	h.cutoffReport(c, "client-aging", func(ctx context.Context, snap *reports.Snapshot, cutoff time.Time) (any, error) {
		return h.service.ClientAging(ctx, snap, cutoff)
	})
}

// GetSupplierBalances handles GET /reports/suppliers/balances
func (h *ReportsHandler) GetSupplierBalances(c *gin.Context) {
	h.cutoffReport(c, "supplier-balances", func(ctx context.Context, snap *reports.Snapshot, cutoff time.Time) (any, error) {
		return h.service.SupplierBalances(ctx, snap, cutoff)
	})
}

// GetClientBalances handles GET /reports/clients/balances
func (h *ReportsHandler) GetClientBalances(c *gin.Context) {
	h.cutoffReport(c, "client-balances", func(ctx context.Context, snap *reports.Snapshot, cutoff time.Time) (any, error) {
		return h.service.ClientBalances(ctx, snap, cutoff)
	})
}

func (h *ReportsHandler) cutoffReport(c *gin.Context, name string, compute func(context.Context, *reports.Snapshot, time.Time) (any, error)) {
	ctx := c.Request.Context()

	var req dto.CutoffRequest
	if !h.BindQuery(c, &req) {
		return
	}
	cutoff, err := req.ToTime()
	if err != nil {
		h.Error(c, err)
		return
	}

	snap, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	key := fmt.Sprintf("%d:%s:%s", snap.Version, name, req.Cutoff)
	h.serve(c, key, func() (any, error) {
		return compute(ctx, snap, cutoff)
	})
}

// serve renders the report through the cache: a hit is returned as-is,
// a miss is computed, cached and returned.
func (h *ReportsHandler) serve(c *gin.Context, key string, compute func() (any, error)) {
	ctx := c.Request.Context()
	if h.cache != nil {
		if payload, ok := h.cache.Get(ctx, key); ok {
			h.OKRaw(c, payload)
			return
		}
	}

	report, err := compute()
	if err != nil {
		h.Error(c, err)
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		h.Error(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Set(ctx, key, payload)
	}
	h.OKRaw(c, payload)
}
