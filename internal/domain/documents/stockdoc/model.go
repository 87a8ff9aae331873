// Package stockdoc provides the stock document variants (Receipt, WriteOff,
// InternalTransfer, GoodsReturn). The set is sealed: the replay switch in the
// batch register matches every variant and hard-fails on anything else, so a
// new document kind cannot slip through unhandled.
package stockdoc

import (
	"context"
	"time"

	"kantina/internal/core/apperror"
	"kantina/internal/core/entity"
	"kantina/internal/core/id"
	"kantina/internal/core/types"
)

// Document is the sealed stock document variant.
// Implementations: *Receipt, *WriteOff, *Transfer, *Return.
type Document interface {
	stockDocument()

	DocID() id.ID
	DocNumber() string
	DocDate() time.Time
	DocStatus() entity.Status
}

// ReceiptLine is a received batch of one product.
type ReceiptLine struct {
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  types.Qty   `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// BatchID identifies the received lot; generated when empty.
	BatchID string `db:"batch_id" json:"batchId"`

	// ValidUntil is the optional expiry date of the batch.
	ValidUntil *time.Time `db:"valid_until" json:"validUntil,omitempty"`
}

// Amount returns the line total.
func (l ReceiptLine) Amount() types.Money {
	return l.Quantity.Mul(l.UnitPrice)
}

// QtyLine is a plain (product, quantity) line used by write-offs,
// transfers and returns; cost is resolved from lots at replay time.
type QtyLine struct {
	ProductID id.ID     `db:"product_id" json:"productId"`
	Quantity  types.Qty `db:"quantity" json:"quantity"`
}

// Receipt records incoming goods from a supplier into a warehouse
// (Поступление товаров).
type Receipt struct {
	entity.Document

	SupplierID  id.ID `db:"supplier_id" json:"supplierId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	Lines []ReceiptLine `db:"-" json:"lines"`
}

// WriteOff records disposal of goods from a warehouse (Списание).
type WriteOff struct {
	entity.Document

	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Reason      string `db:"reason" json:"reason,omitempty"`

	Lines []QtyLine `db:"-" json:"lines"`
}

// Transfer moves goods between warehouses preserving cost basis
// (Перемещение).
type Transfer struct {
	entity.Document

	FromWarehouseID id.ID `db:"from_warehouse_id" json:"fromWarehouseId"`
	ToWarehouseID   id.ID `db:"to_warehouse_id" json:"toWarehouseId"`

	Lines []QtyLine `db:"-" json:"lines"`
}

// ReturnLine is a returned batch of one product. UnitPrice is the agreed
// return price used for the supplier debt side; stock replay costs the
// return from lots and ignores it.
type ReturnLine struct {
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  types.Qty   `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// Amount returns the line total.
func (l ReturnLine) Amount() types.Money {
	return l.Quantity.Mul(l.UnitPrice)
}

// Return records goods sent back to a supplier (Возврат поставщику).
type Return struct {
	entity.Document

	SupplierID  id.ID `db:"supplier_id" json:"supplierId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	Lines []ReturnLine `db:"-" json:"lines"`
}

func (*Receipt) stockDocument()  {}
func (*WriteOff) stockDocument() {}
func (*Transfer) stockDocument() {}
func (*Return) stockDocument()   {}

// Total returns the receipt document total.
func (r *Receipt) Total() types.Money {
	total := types.Zero()
	for _, l := range r.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Validate implements entity.Validatable.
func (r *Receipt) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(r.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range r.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

// Validate implements entity.Validatable.
func (w *WriteOff) Validate(ctx context.Context) error {
	if err := w.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(w.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	return validateQtyLines(w.Lines)
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(t.FromWarehouseID) || id.IsNil(t.ToWarehouseID) {
		return apperror.NewValidation("both warehouses are required").
			WithDetail("field", "warehouseId")
	}
	if t.FromWarehouseID == t.ToWarehouseID {
		return apperror.NewValidation("source and destination warehouses must differ")
	}
	return validateQtyLines(t.Lines)
}

// Total returns the return document total at agreed return prices.
func (r *Return) Total() types.Money {
	total := types.Zero()
	for _, l := range r.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// Validate implements entity.Validatable.
func (r *Return) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(r.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range r.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}

func validateQtyLines(lines []QtyLine) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
