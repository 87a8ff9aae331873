package batch

import (
	"fmt"
	"time"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
	"kantina/internal/domain/documents/stockdoc"
)

// DocKind labels a stock movement's originating document.
type DocKind string

const (
	DocKindReceipt  DocKind = "receipt"
	DocKindWriteOff DocKind = "write_off"
	DocKindTransfer DocKind = "transfer"
	DocKindReturn   DocKind = "return"
)

// Movement is one costed report-level stock effect. A transfer emits two:
// a credit at the source warehouse and a debit at the destination, both
// valued at the original lot cost.
type Movement struct {
	Date        time.Time
	DocID       id.ID
	DocNumber   string
	DocKind     DocKind
	ProductID   id.ID
	WarehouseID id.ID

	// QtyDelta and ValueDelta are signed: positive for debit (incoming),
	// negative for credit (outgoing).
	QtyDelta   types.Qty
	ValueDelta types.Money
}

// Shortfall flags a consume request that exceeded the available lots.
// The unmet quantity carries no cost; it must be surfaced, never absorbed.
type Shortfall struct {
	Date        time.Time
	DocID       id.ID
	DocNumber   string
	DocKind     DocKind
	ProductID   id.ID
	WarehouseID id.ID
	Requested   types.Qty
	Consumed    types.Qty
	Unmet       types.Qty
}

// ReplayResult is everything a replay produced.
type ReplayResult struct {
	Movements  []Movement
	Shortfalls []Shortfall
}

// Processor replays confirmed stock documents in date order against a
// fresh ledger. One processor serves one report computation.
type Processor struct {
	ledger *Ledger
}

// NewProcessor creates a processor over an empty ledger.
func NewProcessor() *Processor {
	return &Processor{ledger: NewLedger()}
}

// Ledger exposes the ledger state after (or during) replay.
func (p *Processor) Ledger() *Ledger {
	return p.ledger
}

// Replay processes documents in slice order, which the caller must have
// sorted by date ascending (stockdoc.Stream does). The variant switch is
// exhaustive over the sealed document set.
func (p *Processor) Replay(docs []stockdoc.Document) (*ReplayResult, error) {
	result := &ReplayResult{}
	for _, doc := range docs {
		switch d := doc.(type) {
		case *stockdoc.Receipt:
			p.applyReceipt(d, result)
		case *stockdoc.WriteOff:
			p.consumeLines(d.ID, d.Number, d.Date, DocKindWriteOff, d.WarehouseID, d.Lines, result)
		case *stockdoc.Transfer:
			p.applyTransfer(d, result)
		case *stockdoc.Return:
			lines := make([]stockdoc.QtyLine, 0, len(d.Lines))
			for _, l := range d.Lines {
				lines = append(lines, stockdoc.QtyLine{ProductID: l.ProductID, Quantity: l.Quantity})
			}
			p.consumeLines(d.ID, d.Number, d.Date, DocKindReturn, d.WarehouseID, lines, result)
		default:
			return nil, fmt.Errorf("batch: unhandled stock document variant %T", doc)
		}
	}
	return result, nil
}

func (p *Processor) applyReceipt(d *stockdoc.Receipt, result *ReplayResult) {
	for i, line := range d.Lines {
		batchID := line.BatchID
		if batchID == "" {
			batchID = fmt.Sprintf("%s/%d", d.Number, i+1)
		}
		p.ledger.Append(Lot{
			BatchID:     batchID,
			ProductID:   line.ProductID,
			WarehouseID: d.WarehouseID,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitPrice,
			ReceivedAt:  d.Date,
			ExpiresAt:   line.ValidUntil,
		})
		result.Movements = append(result.Movements, Movement{
			Date:        d.Date,
			DocID:       d.ID,
			DocNumber:   d.Number,
			DocKind:     DocKindReceipt,
			ProductID:   line.ProductID,
			WarehouseID: d.WarehouseID,
			QtyDelta:    line.Quantity,
			ValueDelta:  line.Quantity.Mul(line.UnitPrice),
		})
	}
}

func (p *Processor) consumeLines(docID id.ID, number string, date time.Time, kind DocKind, warehouseID id.ID, lines []stockdoc.QtyLine, result *ReplayResult) {
	for _, line := range lines {
		consumed := p.ledger.Consume(line.ProductID, warehouseID, line.Quantity)
		if consumed.Quantity.IsPositive() {
			result.Movements = append(result.Movements, Movement{
				Date:        date,
				DocID:       docID,
				DocNumber:   number,
				DocKind:     kind,
				ProductID:   line.ProductID,
				WarehouseID: warehouseID,
				QtyDelta:    consumed.Quantity.Neg(),
				ValueDelta:  consumed.Value.Neg(),
			})
		}
		if consumed.Shortfall.IsPositive() {
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				Date:        date,
				DocID:       docID,
				DocNumber:   number,
				DocKind:     kind,
				ProductID:   line.ProductID,
				WarehouseID: warehouseID,
				Requested:   line.Quantity,
				Consumed:    consumed.Quantity,
				Unmet:       consumed.Shortfall,
			})
		}
	}
}

func (p *Processor) applyTransfer(d *stockdoc.Transfer, result *ReplayResult) {
	for _, line := range d.Lines {
		consumed := p.ledger.Consume(line.ProductID, d.FromWarehouseID, line.Quantity)

		// Each consumed slice reappears at the destination with the same
		// cost, expiry and receipt date; the derived batch id keeps the
		// audit lineage through the transfer.
		for _, slice := range consumed.Slices {
			p.ledger.Append(Lot{
				BatchID:     slice.BatchID + "-" + transferRef(d),
				ProductID:   line.ProductID,
				WarehouseID: d.ToWarehouseID,
				Quantity:    slice.Quantity,
				UnitCost:    slice.UnitCost,
				ReceivedAt:  slice.ReceivedAt,
				ExpiresAt:   slice.ExpiresAt,
			})
		}

		if consumed.Quantity.IsPositive() {
			result.Movements = append(result.Movements,
				Movement{
					Date:        d.Date,
					DocID:       d.ID,
					DocNumber:   d.Number,
					DocKind:     DocKindTransfer,
					ProductID:   line.ProductID,
					WarehouseID: d.FromWarehouseID,
					QtyDelta:    consumed.Quantity.Neg(),
					ValueDelta:  consumed.Value.Neg(),
				},
				Movement{
					Date:        d.Date,
					DocID:       d.ID,
					DocNumber:   d.Number,
					DocKind:     DocKindTransfer,
					ProductID:   line.ProductID,
					WarehouseID: d.ToWarehouseID,
					QtyDelta:    consumed.Quantity,
					ValueDelta:  consumed.Value,
				},
			)
		}

		if consumed.Shortfall.IsPositive() {
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				Date:        d.Date,
				DocID:       d.ID,
				DocNumber:   d.Number,
				DocKind:     DocKindTransfer,
				ProductID:   line.ProductID,
				WarehouseID: d.FromWarehouseID,
				Requested:   line.Quantity,
				Consumed:    consumed.Quantity,
				Unmet:       consumed.Shortfall,
			})
		}
	}
}

func transferRef(d *stockdoc.Transfer) string {
	if d.Number != "" {
		return d.Number
	}
	return d.ID.String()
}
