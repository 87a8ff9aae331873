// Package snapshot_repo loads the report snapshot from PostgreSQL.
// Catalogs, documents and payments are read in full; reports replay
// them in memory.
package snapshot_repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kantina/internal/core/id"
	"kantina/internal/domain/catalogs/counterparty"
	"kantina/internal/domain/catalogs/product"
	"kantina/internal/domain/catalogs/warehouse"
	"kantina/internal/domain/documents/debtdoc"
	"kantina/internal/domain/documents/stockdoc"
	"kantina/internal/domain/reports"
	"kantina/internal/infrastructure/storage/postgres"
	"kantina/pkg/logger"
)

const (
	productTable      = "cat_products"
	warehouseTable    = "cat_warehouses"
	counterpartyTable = "cat_counterparties"

	receiptTable        = "doc_receipts"
	receiptLineTable    = "doc_receipt_lines"
	writeOffTable       = "doc_write_offs"
	writeOffLineTable   = "doc_write_off_lines"
	transferTable       = "doc_transfers"
	transferLineTable   = "doc_transfer_lines"
	returnTable         = "doc_returns"
	returnLineTable     = "doc_return_lines"
	adjustmentTable     = "doc_price_adjustments"
	adjustmentLineTable = "doc_price_adjustment_lines"
	invoiceTable        = "doc_sales_invoices"
	invoiceLineTable    = "doc_sales_invoice_lines"
	salesReturnTable    = "doc_sales_returns"
	salesReturnLineTable = "doc_sales_return_lines"

	paymentTable = "doc_payments"
)

// Store loads and caches entity snapshots. Snapshot() serves a cached
// copy until the TTL passes or the version query reports a change.
type Store struct {
	pool *postgres.Pool
	ttl  time.Duration
	log  *logger.Logger

	mu       sync.Mutex
	cached   *reports.Snapshot
	loadedAt time.Time
}

// NewStore creates a snapshot store. ttl bounds how long a cached
// snapshot may be served without checking the database.
func NewStore(pool *postgres.Pool, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		pool: pool,
		ttl:  ttl,
		log:  log.WithComponent("snapshot-store"),
	}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Snapshot implements the reports snapshot provider.
func (s *Store) Snapshot(ctx context.Context) (*reports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.loadedAt) < s.ttl {
		return s.cached, nil
	}

	version, err := s.version(ctx)
	if err != nil {
		return nil, err
	}
	if s.cached != nil && s.cached.Version == version {
		s.loadedAt = time.Now()
		return s.cached, nil
	}

	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap.Version = version
	s.cached = snap
	s.loadedAt = time.Now()

	s.log.WithContext(ctx).Infow("snapshot loaded",
		"version", version,
		"products", len(snap.Products),
		"receipts", len(snap.GoodsReceipts),
	)
	return snap, nil
}

// version derives a change marker from row counts and the latest
// update timestamp across all snapshot tables.
func (s *Store) version(ctx context.Context) (int64, error) {
	tables := []string{
		productTable, warehouseTable, counterpartyTable,
		receiptTable, writeOffTable, transferTable, returnTable,
		adjustmentTable, invoiceTable, salesReturnTable, paymentTable,
	}

	var total, latest int64
	for _, table := range tables {
		var row struct {
			Count   int64      `db:"count"`
			Updated *time.Time `db:"updated"`
		}
		sql := fmt.Sprintf("SELECT COUNT(*) AS count, MAX(updated_at) AS updated FROM %s", table)
		if err := pgxscan.Get(ctx, s.pool, &row, sql); err != nil {
			return 0, fmt.Errorf("version of %s: %w", table, err)
		}
		total += row.Count
		if row.Updated != nil && row.Updated.UnixMicro() > latest {
			latest = row.Updated.UnixMicro()
		}
	}
	return latest + total, nil
}

// Load reads a full snapshot without consulting the cache.
func (s *Store) Load(ctx context.Context) (*reports.Snapshot, error) {
	snap := &reports.Snapshot{}

	if err := s.loadCatalogs(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadStockDocuments(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadDebtDocuments(ctx, snap); err != nil {
		return nil, err
	}
	if err := s.loadPayments(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func selectAll[T any](ctx context.Context, pool *postgres.Pool, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []T
	if err := pgxscan.Select(ctx, pool, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return rows, nil
}

func (s *Store) loadCatalogs(ctx context.Context, snap *reports.Snapshot) error {
	products, err := selectAll[*product.Product](ctx, s.pool,
		builder().Select("*").From(productTable).OrderBy("code"))
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	snap.Products = products

	warehouses, err := selectAll[*warehouse.Warehouse](ctx, s.pool,
		builder().Select("*").From(warehouseTable).OrderBy("code"))
	if err != nil {
		return fmt.Errorf("load warehouses: %w", err)
	}
	snap.Warehouses = warehouses

	parties, err := selectAll[*counterparty.Counterparty](ctx, s.pool,
		builder().Select("*").From(counterpartyTable).OrderBy("code"))
	if err != nil {
		return fmt.Errorf("load counterparties: %w", err)
	}
	for _, cp := range parties {
		switch cp.Kind {
		case counterparty.KindSupplier:
			snap.Suppliers = append(snap.Suppliers, cp)
		case counterparty.KindClient:
			snap.Clients = append(snap.Clients, cp)
		}
	}
	return nil
}

func lineQuery(table string, cols ...string) squirrel.SelectBuilder {
	selected := append([]string{"document_id"}, cols...)
	return builder().Select(selected...).From(table).OrderBy("document_id", "line_no")
}

func (s *Store) loadStockDocuments(ctx context.Context, snap *reports.Snapshot) error {
	// Receipts
	receipts, err := selectAll[*stockdoc.Receipt](ctx, s.pool,
		builder().Select("*").From(receiptTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load receipts: %w", err)
	}
	type receiptLine struct {
		DocumentID id.ID `db:"document_id"`
		stockdoc.ReceiptLine
	}
	receiptLines, err := selectAll[receiptLine](ctx, s.pool,
		lineQuery(receiptLineTable, "product_id", "quantity", "unit_price", "batch_id", "valid_until"))
	if err != nil {
		return fmt.Errorf("load receipt lines: %w", err)
	}
	byReceipt := make(map[id.ID]*stockdoc.Receipt, len(receipts))
	for _, d := range receipts {
		byReceipt[d.ID] = d
	}
	for _, l := range receiptLines {
		if d, ok := byReceipt[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.ReceiptLine)
		}
	}
	snap.GoodsReceipts = receipts

	// Write-offs
	writeOffs, err := selectAll[*stockdoc.WriteOff](ctx, s.pool,
		builder().Select("*").From(writeOffTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load write-offs: %w", err)
	}
	type qtyLine struct {
		DocumentID id.ID `db:"document_id"`
		stockdoc.QtyLine
	}
	writeOffLines, err := selectAll[qtyLine](ctx, s.pool,
		lineQuery(writeOffLineTable, "product_id", "quantity"))
	if err != nil {
		return fmt.Errorf("load write-off lines: %w", err)
	}
	byWriteOff := make(map[id.ID]*stockdoc.WriteOff, len(writeOffs))
	for _, d := range writeOffs {
		byWriteOff[d.ID] = d
	}
	for _, l := range writeOffLines {
		if d, ok := byWriteOff[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.QtyLine)
		}
	}
	snap.WriteOffs = writeOffs

	// Transfers
	transfers, err := selectAll[*stockdoc.Transfer](ctx, s.pool,
		builder().Select("*").From(transferTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load transfers: %w", err)
	}
	transferLines, err := selectAll[qtyLine](ctx, s.pool,
		lineQuery(transferLineTable, "product_id", "quantity"))
	if err != nil {
		return fmt.Errorf("load transfer lines: %w", err)
	}
	byTransfer := make(map[id.ID]*stockdoc.Transfer, len(transfers))
	for _, d := range transfers {
		byTransfer[d.ID] = d
	}
	for _, l := range transferLines {
		if d, ok := byTransfer[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.QtyLine)
		}
	}
	snap.Transfers = transfers

	// Returns
	returns, err := selectAll[*stockdoc.Return](ctx, s.pool,
		builder().Select("*").From(returnTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load returns: %w", err)
	}
	type returnLine struct {
		DocumentID id.ID `db:"document_id"`
		stockdoc.ReturnLine
	}
	returnLines, err := selectAll[returnLine](ctx, s.pool,
		lineQuery(returnLineTable, "product_id", "quantity", "unit_price"))
	if err != nil {
		return fmt.Errorf("load return lines: %w", err)
	}
	byReturn := make(map[id.ID]*stockdoc.Return, len(returns))
	for _, d := range returns {
		byReturn[d.ID] = d
	}
	for _, l := range returnLines {
		if d, ok := byReturn[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.ReturnLine)
		}
	}
	snap.GoodsReturns = returns

	return nil
}

func (s *Store) loadDebtDocuments(ctx context.Context, snap *reports.Snapshot) error {
	// Price adjustments
	adjustments, err := selectAll[*debtdoc.PriceAdjustment](ctx, s.pool,
		builder().Select("*").From(adjustmentTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load price adjustments: %w", err)
	}
	type adjustmentLine struct {
		DocumentID id.ID `db:"document_id"`
		debtdoc.AdjustmentLine
	}
	adjustmentLines, err := selectAll[adjustmentLine](ctx, s.pool,
		lineQuery(adjustmentLineTable, "product_id", "quantity", "old_price", "new_price"))
	if err != nil {
		return fmt.Errorf("load price adjustment lines: %w", err)
	}
	byAdjustment := make(map[id.ID]*debtdoc.PriceAdjustment, len(adjustments))
	for _, d := range adjustments {
		byAdjustment[d.ID] = d
	}
	for _, l := range adjustmentLines {
		if d, ok := byAdjustment[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.AdjustmentLine)
		}
	}
	snap.PriceAdjustments = adjustments

	// Sales invoices
	invoices, err := selectAll[*debtdoc.SalesInvoice](ctx, s.pool,
		builder().Select("*").From(invoiceTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load sales invoices: %w", err)
	}
	type saleLine struct {
		DocumentID id.ID `db:"document_id"`
		debtdoc.SaleLine
	}
	invoiceLines, err := selectAll[saleLine](ctx, s.pool,
		lineQuery(invoiceLineTable, "product_id", "quantity", "unit_price"))
	if err != nil {
		return fmt.Errorf("load sales invoice lines: %w", err)
	}
	byInvoice := make(map[id.ID]*debtdoc.SalesInvoice, len(invoices))
	for _, d := range invoices {
		byInvoice[d.ID] = d
	}
	for _, l := range invoiceLines {
		if d, ok := byInvoice[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.SaleLine)
		}
	}
	snap.SalesInvoices = invoices

	// Sales returns
	salesReturns, err := selectAll[*debtdoc.SalesReturn](ctx, s.pool,
		builder().Select("*").From(salesReturnTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load sales returns: %w", err)
	}
	salesReturnLines, err := selectAll[saleLine](ctx, s.pool,
		lineQuery(salesReturnLineTable, "product_id", "quantity", "unit_price"))
	if err != nil {
		return fmt.Errorf("load sales return lines: %w", err)
	}
	bySalesReturn := make(map[id.ID]*debtdoc.SalesReturn, len(salesReturns))
	for _, d := range salesReturns {
		bySalesReturn[d.ID] = d
	}
	for _, l := range salesReturnLines {
		if d, ok := bySalesReturn[l.DocumentID]; ok {
			d.Lines = append(d.Lines, l.SaleLine)
		}
	}
	snap.SalesReturns = salesReturns

	return nil
}

func (s *Store) loadPayments(ctx context.Context, snap *reports.Snapshot) error {
	type paymentRow struct {
		debtdoc.Payment
		Kind string `db:"kind"`
	}
	rows, err := selectAll[paymentRow](ctx, s.pool,
		builder().Select("*").From(paymentTable).OrderBy("date", "number"))
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	for _, row := range rows {
		p := row.Payment
		switch row.Kind {
		case "supplier":
			snap.SupplierPayments = append(snap.SupplierPayments, &p)
		case "client":
			snap.ClientPayments = append(snap.ClientPayments, &p)
		}
	}
	return nil
}
