// Package debtdoc provides the debt document variants replayed by the debt
// register. Supplier debt is created by goods receipts and positive price
// adjustments and reduced by returns; client debt is created by sales
// invoices and reduced by sales returns. The set is sealed: the settlement
// switch matches every variant and hard-fails on anything else.
package debtdoc

import (
	"context"
	"time"

	"kantina/internal/core/apperror"
	"kantina/internal/core/entity"
	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/documents/stockdoc"
)

// Document is the sealed debt document variant.
// Implementations: SupplierReceipt, SupplierReturn, *PriceAdjustment,
// *SalesInvoice, *SalesReturn.
type Document interface {
	debtDocument()

	DocID() id.ID
	DocNumber() string
	DocDate() time.Time
	DocStatus() entity.Status

	// CounterpartyID is the supplier or client the debt belongs to.
	CounterpartyID() id.ID

	// SignedTotal is the document's effect on counterparty debt:
	// positive increases it, negative reduces it.
	SignedTotal() types.Money

	// LineItems returns the drill-down lines. Empty for documents
	// without a table part.
	LineItems() []LineItem
}

// LineItem is a report drill-down line.
type LineItem struct {
	ProductID id.ID       `json:"productId"`
	Quantity  types.Qty   `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Amount    types.Money `json:"amount"`
}

// Payment is an incoming or outgoing settlement. Amount is unsigned and
// always reduces the counterparty's debt.
type Payment struct {
	ID             id.ID       `db:"id" json:"id"`
	Number         string      `db:"number" json:"number"`
	Date           time.Time   `db:"date" json:"date"`
	CounterpartyID id.ID       `db:"counterparty_id" json:"counterpartyId"`
	Amount         types.Money `db:"amount" json:"amount"`
	Comment        string      `db:"comment" json:"comment,omitempty"`
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if id.IsNil(p.CounterpartyID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterpartyId")
	}
	if p.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if p.Amount.IsNegative() {
		return apperror.NewValidation("amount must not be negative").
			WithDetail("field", "amount")
	}
	return nil
}

// --- Supplier side: goods receipt and return seen as debt documents ---

// SupplierReceipt is the debt view of a goods receipt: it increases what
// the business owes the supplier.
type SupplierReceipt struct {
	*stockdoc.Receipt
}

func (SupplierReceipt) debtDocument() {}

// CounterpartyID implements Document.
func (d SupplierReceipt) CounterpartyID() id.ID { return d.SupplierID }

// SignedTotal implements Document.
func (d SupplierReceipt) SignedTotal() types.Money { return d.Total() }

// LineItems implements Document.
func (d SupplierReceipt) LineItems() []LineItem {
	items := make([]LineItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, LineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		})
	}
	return items
}

// SupplierReturn is the debt view of a goods return: it reduces what the
// business owes the supplier.
type SupplierReturn struct {
	*stockdoc.Return
}

func (SupplierReturn) debtDocument() {}

// CounterpartyID implements Document.
func (d SupplierReturn) CounterpartyID() id.ID { return d.SupplierID }

// SignedTotal implements Document.
func (d SupplierReturn) SignedTotal() types.Money { return d.Total().Neg() }

// LineItems implements Document.
func (d SupplierReturn) LineItems() []LineItem {
	items := make([]LineItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, LineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		})
	}
	return items
}

// --- Price adjustment (Корректировка цен поставщика) ---

// AdjustmentLine re-prices a previously received quantity.
type AdjustmentLine struct {
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  types.Qty   `db:"quantity" json:"quantity"`
	OldPrice  types.Money `db:"old_price" json:"oldPrice"`
	NewPrice  types.Money `db:"new_price" json:"newPrice"`
}

// Amount returns the signed line delta: qty × (new − old).
func (l AdjustmentLine) Amount() types.Money {
	return l.Quantity.Mul(l.NewPrice.Sub(l.OldPrice))
}

// PriceAdjustment corrects supplier prices after the fact. Its total is
// signed: a price increase creates additional debt, a decrease reduces it.
type PriceAdjustment struct {
	entity.Document

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	Lines []AdjustmentLine `db:"-" json:"lines"`
}

func (*PriceAdjustment) debtDocument() {}

// CounterpartyID implements Document.
func (d *PriceAdjustment) CounterpartyID() id.ID { return d.SupplierID }

// SignedTotal implements Document.
func (d *PriceAdjustment) SignedTotal() types.Money {
	total := types.Zero()
	for _, l := range d.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// LineItems implements Document.
func (d *PriceAdjustment) LineItems() []LineItem {
	items := make([]LineItem, 0, len(d.Lines))
	for _, l := range d.Lines {
		items = append(items, LineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.NewPrice.Sub(l.OldPrice),
			Amount:    l.Amount(),
		})
	}
	return items
}

// Validate implements entity.Validatable.
func (d *PriceAdjustment) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(d.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	return nil
}

// --- Client side ---

// SaleLine is a sold (or returned) dish/product line.
type SaleLine struct {
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  types.Qty   `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// Amount returns the line total.
func (l SaleLine) Amount() types.Money {
	return l.Quantity.Mul(l.UnitPrice)
}

// SalesInvoice creates client debt (Счёт покупателю).
type SalesInvoice struct {
	entity.Document

	ClientID id.ID `db:"client_id" json:"clientId"`

	Lines []SaleLine `db:"-" json:"lines"`
}

func (*SalesInvoice) debtDocument() {}

// CounterpartyID implements Document.
func (d *SalesInvoice) CounterpartyID() id.ID { return d.ClientID }

// SignedTotal implements Document.
func (d *SalesInvoice) SignedTotal() types.Money {
	total := types.Zero()
	for _, l := range d.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// LineItems implements Document.
func (d *SalesInvoice) LineItems() []LineItem {
	return saleLineItems(d.Lines)
}

// Validate implements entity.Validatable.
func (d *SalesInvoice) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(d.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	return nil
}

// SalesReturn reduces client debt (Возврат от покупателя).
type SalesReturn struct {
	entity.Document

	ClientID id.ID `db:"client_id" json:"clientId"`

	Lines []SaleLine `db:"-" json:"lines"`
}

func (*SalesReturn) debtDocument() {}

// CounterpartyID implements Document.
func (d *SalesReturn) CounterpartyID() id.ID { return d.ClientID }

// SignedTotal implements Document.
func (d *SalesReturn) SignedTotal() types.Money {
	total := types.Zero()
	for _, l := range d.Lines {
		total = total.Add(l.Amount())
	}
	return total.Neg()
}

// LineItems implements Document.
func (d *SalesReturn) LineItems() []LineItem {
	return saleLineItems(d.Lines)
}

// Validate implements entity.Validatable.
func (d *SalesReturn) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(d.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if len(d.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	return nil
}

func saleLineItems(lines []SaleLine) []LineItem {
	items := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, LineItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		})
	}
	return items
}
