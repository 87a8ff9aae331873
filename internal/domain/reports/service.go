package reports

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"kantina/pkg/logger"
)

// Service computes reports over snapshots. It is stateless and safe for
// concurrent use.
type Service struct {
	log    *logger.Logger
	tracer trace.Tracer
}

func NewService(log *logger.Logger) *Service {
	return &Service{
		log:    log.WithComponent("reports"),
		tracer: otel.Tracer("kantina/reports"),
	}
}
