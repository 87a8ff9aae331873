// Package reports provides report generation over immutable entity
// snapshots: stock turnover, supplier/client aging and settlement
// balances. Every computation is a pure function of (snapshot, params);
// state lives only for the duration of one call.
package reports

import (
	"time"

	"kantina/internal/core/id"
	"kantina/internal/domain/catalogs/counterparty"
	"kantina/internal/domain/catalogs/product"
	"kantina/internal/domain/catalogs/warehouse"
	"kantina/internal/domain/documents/debtdoc"
	"kantina/internal/domain/documents/stockdoc"
)

// UnknownName is rendered when a document references an id missing from
// the snapshot. The numeric math still uses the document's own fields.
const UnknownName = "unknown"

// Snapshot is a read-only view of the entity store taken for one report
// run. The engine never mutates it.
type Snapshot struct {
	// Version identifies the entity state; it keys the report cache and
	// is bumped by the store on any entity change.
	Version int64

	Products   []*product.Product
	Warehouses []*warehouse.Warehouse
	Suppliers  []*counterparty.Counterparty
	Clients    []*counterparty.Counterparty

	GoodsReceipts    []*stockdoc.Receipt
	WriteOffs        []*stockdoc.WriteOff
	Transfers        []*stockdoc.Transfer
	GoodsReturns     []*stockdoc.Return
	PriceAdjustments []*debtdoc.PriceAdjustment
	SalesInvoices    []*debtdoc.SalesInvoice
	SalesReturns     []*debtdoc.SalesReturn

	SupplierPayments []*debtdoc.Payment
	ClientPayments   []*debtdoc.Payment
}

// ProductName resolves a product id to its display name.
func (s *Snapshot) ProductName(productID id.ID) string {
	for _, p := range s.Products {
		if p.ID == productID {
			return p.Name
		}
	}
	return UnknownName
}

// ProductUnit resolves a product id to its unit of measure.
func (s *Snapshot) ProductUnit(productID id.ID) string {
	for _, p := range s.Products {
		if p.ID == productID {
			return p.Unit
		}
	}
	return ""
}

// WarehouseName resolves a warehouse id to its display name.
func (s *Snapshot) WarehouseName(warehouseID id.ID) string {
	for _, w := range s.Warehouses {
		if w.ID == warehouseID {
			return w.Name
		}
	}
	return UnknownName
}

// StockStream assembles the confirmed stock documents dated at or before
// cutoff, sorted for replay.
func (s *Snapshot) StockStream(cutoff time.Time) []stockdoc.Document {
	stream := stockdoc.Stream(s.GoodsReceipts, s.WriteOffs, s.Transfers, s.GoodsReturns)
	out := stream[:0]
	for _, d := range stream {
		if !d.DocDate().After(cutoff) {
			out = append(out, d)
		}
	}
	return out
}

// SupplierDebtStream assembles the confirmed supplier debt documents
// (receipts, returns, price adjustments) sorted for settlement.
func (s *Snapshot) SupplierDebtStream() []debtdoc.Document {
	docs := make([]debtdoc.Document, 0, len(s.GoodsReceipts)+len(s.GoodsReturns)+len(s.PriceAdjustments))
	for _, d := range s.GoodsReceipts {
		docs = append(docs, debtdoc.SupplierReceipt{Receipt: d})
	}
	for _, d := range s.GoodsReturns {
		docs = append(docs, debtdoc.SupplierReturn{Return: d})
	}
	for _, d := range s.PriceAdjustments {
		docs = append(docs, d)
	}
	return debtdoc.Stream(docs)
}

// ClientDebtStream assembles the confirmed client debt documents
// (sales invoices, sales returns) sorted for settlement.
func (s *Snapshot) ClientDebtStream() []debtdoc.Document {
	docs := make([]debtdoc.Document, 0, len(s.SalesInvoices)+len(s.SalesReturns))
	for _, d := range s.SalesInvoices {
		docs = append(docs, d)
	}
	for _, d := range s.SalesReturns {
		docs = append(docs, d)
	}
	return debtdoc.Stream(docs)
}
