package reports

import (
	"time"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/registers/debt"
)

// TurnoverReport is the stock turnover statement for one date range.
type TurnoverReport struct {
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	WarehouseID *id.ID           `json:"warehouse_id,omitempty"`
	Rows        []TurnoverRow    `json:"rows"`
	Shortfalls  []ShortfallNote  `json:"shortfalls,omitempty"`
}

// TurnoverRow is one product line: opening balance, period debit and
// credit, closing balance, with the in-period movements attached.
type TurnoverRow struct {
	ProductID    id.ID             `json:"product_id"`
	ProductName  string            `json:"product_name"`
	Unit         string            `json:"unit,omitempty"`
	OpeningQty   types.Qty         `json:"opening_qty"`
	OpeningValue types.Money       `json:"opening_value"`
	DebitQty     types.Qty         `json:"debit_qty"`
	DebitValue   types.Money       `json:"debit_value"`
	CreditQty    types.Qty         `json:"credit_qty"`
	CreditValue  types.Money       `json:"credit_value"`
	ClosingQty   types.Qty         `json:"closing_qty"`
	ClosingValue types.Money       `json:"closing_value"`
	Details      []TurnoverDetail  `json:"details,omitempty"`
}

// TurnoverDetail is one movement inside the reporting period.
type TurnoverDetail struct {
	Date          time.Time   `json:"date"`
	DocNumber     string      `json:"doc_number"`
	DocKind       string      `json:"doc_kind"`
	WarehouseID   id.ID       `json:"warehouse_id"`
	WarehouseName string      `json:"warehouse_name"`
	QtyDelta      types.Qty   `json:"qty_delta"`
	ValueDelta    types.Money `json:"value_delta"`
}

// ShortfallNote reports a consumption that exceeded available stock.
// The consumed part is costed normally; the unmet part carries no cost.
type ShortfallNote struct {
	Date          time.Time `json:"date"`
	DocNumber     string    `json:"doc_number"`
	DocKind       string    `json:"doc_kind"`
	ProductID     id.ID     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	WarehouseID   id.ID     `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	Requested     types.Qty `json:"requested"`
	Consumed      types.Qty `json:"consumed"`
	Unmet         types.Qty `json:"unmet"`
}

// AgingReport groups outstanding debt into age buckets per counterparty
// as of a cutoff date.
type AgingReport struct {
	Cutoff time.Time  `json:"cutoff"`
	Rows   []AgingRow `json:"rows"`
	Total  types.Money `json:"total"`
}

// AgingRow is one counterparty with its four age buckets. The bucket
// totals sum to Total.
type AgingRow struct {
	CounterpartyID id.ID                         `json:"counterparty_id"`
	Name           string                        `json:"name"`
	Buckets        [debt.BucketCount]AgingBucket `json:"buckets"`
	Total          types.Money                   `json:"total"`
}

// AgingBucket is one age band with the documents whose remainders
// landed in it.
type AgingBucket struct {
	Label     string          `json:"label"`
	Total     types.Money     `json:"total"`
	Documents []AgingDocument `json:"documents,omitempty"`
}

// AgingDocument is one unsettled document remainder inside a bucket.
type AgingDocument struct {
	DocID            id.ID            `json:"doc_id"`
	DocNumber        string           `json:"doc_number"`
	Date             time.Time        `json:"date"`
	Remaining        types.Money      `json:"remaining"`
	IsInitialBalance bool             `json:"is_initial_balance,omitempty"`
	Lines            []ReportLineItem `json:"lines,omitempty"`
}

// ReportLineItem is a document line with the product name resolved.
type ReportLineItem struct {
	ProductID   id.ID       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    types.Qty   `json:"quantity"`
	UnitPrice   types.Money `json:"unit_price"`
	Amount      types.Money `json:"amount"`
}

// BalanceReport lists counterparty settlement balances as of a cutoff
// date, each with its full transaction history.
type BalanceReport struct {
	Cutoff time.Time    `json:"cutoff"`
	Rows   []BalanceRow `json:"rows"`
	Total  types.Money  `json:"total"`
}

// BalanceRow is one counterparty's balance with the dated transactions
// that produced it. A positive balance means debt owed to (supplier) or
// by (client) the counterparty; negative means a prepayment surplus.
type BalanceRow struct {
	CounterpartyID id.ID                `json:"counterparty_id"`
	Name           string               `json:"name"`
	Balance        types.Money          `json:"balance"`
	Transactions   []BalanceTransaction `json:"transactions,omitempty"`
}

// BalanceTransaction is one history entry. Debit carries amounts that
// increase the debt, Credit amounts that reduce it; Running is the
// balance after this entry.
type BalanceTransaction struct {
	Date             time.Time        `json:"date"`
	DocID            id.ID            `json:"doc_id,omitempty"`
	DocNumber        string           `json:"doc_number,omitempty"`
	Kind             string           `json:"kind"`
	Debit            types.Money      `json:"debit"`
	Credit           types.Money      `json:"credit"`
	Running          types.Money      `json:"running"`
	IsInitialBalance bool             `json:"is_initial_balance,omitempty"`
	Lines            []ReportLineItem `json:"lines,omitempty"`
}
