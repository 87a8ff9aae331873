// Package product provides the Product catalog (Номенклатура).
package product

import (
	"context"

	"kantina/internal/core/apperror"
	"kantina/internal/core/entity"
	"kantina/internal/core/types"
)

// Product represents an item tracked in stock: an ingredient or a dish.
type Product struct {
	entity.Catalog

	// Unit is the base unit of measure (kg, l, pcs)
	Unit string `db:"unit" json:"unit"`

	// MinimumStock is the reorder threshold
	MinimumStock types.Qty `db:"minimum_stock" json:"minimumStock"`
}

// New creates a new product.
func New(code, name, unit string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		Unit:    unit,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}
	if p.MinimumStock.IsNegative() {
		return apperror.NewValidation("minimum stock must not be negative").
			WithDetail("field", "minimumStock")
	}
	return nil
}
