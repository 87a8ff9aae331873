// Package warehouse provides the Warehouse catalog (Склады).
package warehouse

import (
	"context"

	"kantina/internal/core/entity"
)

// Warehouse represents a physical storage location.
type Warehouse struct {
	entity.Catalog
}

// New creates a new warehouse.
func New(code, name string) *Warehouse {
	return &Warehouse{Catalog: entity.NewCatalog(code, name)}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	return w.Catalog.Validate(ctx)
}
