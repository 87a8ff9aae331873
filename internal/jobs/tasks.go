// Package jobs provides background task definitions and the worker that
// processes them.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"kantina/internal/domain/reports"
	"kantina/pkg/logger"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskReportWarmup precomputes the report set so the first morning
	// request is served from cache.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload selects the as-of date for the warmup run. An
// empty date means today.
type ReportWarmupPayload struct {
	Date string `json:"date,omitempty"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// ReportCache stores rendered report payloads where the API server
// can read them back.
type ReportCache interface {
	Set(ctx context.Context, key string, payload []byte)
}

// SnapshotProvider supplies the entity snapshot reports are computed
// over.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*reports.Snapshot, error)
}

// WarmupHandler precomputes every report for the requested date and
// stores the rendered payloads in the cache under the same keys the
// HTTP layer uses.
type WarmupHandler struct {
	service   *reports.Service
	snapshots SnapshotProvider
	cache     ReportCache
	log       *logger.Logger
}

// NewWarmupHandler creates the warmup task handler.
func NewWarmupHandler(service *reports.Service, snapshots SnapshotProvider, cache ReportCache, log *logger.Logger) *WarmupHandler {
	return &WarmupHandler{
		service:   service,
		snapshots: snapshots,
		cache:     cache,
		log:       log.WithComponent("report-warmup"),
	}
}

// ProcessTask implements asynq.Handler.
func (h *WarmupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	day := time.Now().UTC()
	if payload.Date != "" {
		parsed, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			h.log.WithContext(ctx).Errorw("invalid warmup date", "date", payload.Date)
			return asynq.SkipRetry
		}
		day = parsed
	}
	return h.Warm(ctx, day)
}

// Warm computes every report for day and fills the cache. Also called
// directly by the server at startup, through the report runner.
func (h *WarmupHandler) Warm(ctx context.Context, day time.Time) error {
	dateStr := day.Format("2006-01-02")

	snap, err := h.snapshots.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	type namedReport struct {
		key     string
		compute func() (any, error)
	}
	all := []namedReport{
		{
			key: fmt.Sprintf("%d:supplier-aging:%s", snap.Version, dateStr),
			compute: func() (any, error) { return h.service.SupplierAging(ctx, snap, day) },
		},
		{
			key: fmt.Sprintf("%d:client-aging:%s", snap.Version, dateStr),
			compute: func() (any, error) { return h.service.ClientAging(ctx, snap, day) },
		},
		{
			key: fmt.Sprintf("%d:supplier-balances:%s", snap.Version, dateStr),
			compute: func() (any, error) { return h.service.SupplierBalances(ctx, snap, day) },
		},
		{
			key: fmt.Sprintf("%d:client-balances:%s", snap.Version, dateStr),
			compute: func() (any, error) { return h.service.ClientBalances(ctx, snap, day) },
		},
	}

	warmed := 0
	for _, r := range all {
		report, err := r.compute()
		if err != nil {
			// Validation errors (an empty database, for instance) are
			// not retryable.
			h.log.WithContext(ctx).Warnw("warmup report skipped", "key", r.key, "error", err)
			continue
		}
		payload, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", r.key, err)
		}
		h.cache.Set(ctx, r.key, payload)
		warmed++
	}

	h.log.WithContext(ctx).Infow("report warmup finished",
		"date", dateStr,
		"snapshot_version", snap.Version,
		"warmed", warmed,
	)
	return nil
}
