// Package batch provides the stock batch register: per (product, warehouse)
// ledgers of received lots consumed oldest-first, and the replay processor
// that turns a stock document stream into costed movements.
package batch

import (
	"sort"
	"time"

	"kantina/internal/core/id"
	"kantina/internal/core/types"
)

// Lot is a quantity of one product received at one cost and date, tracked
// until fully consumed. A lot belongs to exactly one ledger and is mutated
// only during a single replay.
type Lot struct {
	BatchID     string
	ProductID   id.ID
	WarehouseID id.ID
	Quantity    types.Qty
	UnitCost    types.Money
	ReceivedAt  time.Time
	ExpiresAt   *time.Time
}

// Slice is a piece of a lot consumed by one operation. Transfers re-append
// slices at the destination warehouse to preserve cost basis.
type Slice struct {
	BatchID    string
	Quantity   types.Qty
	UnitCost   types.Money
	ReceivedAt time.Time
	ExpiresAt  *time.Time
}

// Consumption is the result of a FIFO consume operation.
type Consumption struct {
	// Quantity actually taken from lots.
	Quantity types.Qty

	// Value is the quantity-weighted cost of what was taken.
	Value types.Money

	// Slices are the per-lot pieces in consumption order.
	Slices []Slice

	// Shortfall is the requested quantity that no lot could cover.
	// Zero when the need was fully satisfied.
	Shortfall types.Qty
}

type lotKey struct {
	productID   id.ID
	warehouseID id.ID
}

// Ledger holds the lots of a single replay run. It is built fresh for every
// report computation and discarded afterwards; it is not safe for
// concurrent use.
type Ledger struct {
	lots map[lotKey][]*Lot
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{lots: make(map[lotKey][]*Lot)}
}

// Append inserts a lot keeping the key's lots ordered by receipt date
// ascending; a lot dated equal to existing ones goes after them, so the
// FIFO tie-break is insertion order.
func (l *Ledger) Append(lot Lot) {
	key := lotKey{productID: lot.ProductID, warehouseID: lot.WarehouseID}

	lots := l.lots[key]
	idx := sort.Search(len(lots), func(i int) bool {
		return lots[i].ReceivedAt.After(lot.ReceivedAt)
	})
	lots = append(lots, nil)
	copy(lots[idx+1:], lots[idx:])
	stored := lot
	lots[idx] = &stored
	l.lots[key] = lots
}

// Consume takes qty of a product from a warehouse, draining the oldest
// lots first. Consumed lots shrink in place; emptied lots are pruned.
func (l *Ledger) Consume(productID, warehouseID id.ID, qty types.Qty) Consumption {
	key := lotKey{productID: productID, warehouseID: warehouseID}

	need := qty
	result := Consumption{Quantity: types.Zero(), Value: types.Zero(), Shortfall: types.Zero()}

	for _, lot := range l.lots[key] {
		if !need.IsPositive() {
			break
		}
		take := types.MinQty(need, lot.Quantity)
		if !take.IsPositive() {
			continue
		}

		lot.Quantity = lot.Quantity.Sub(take)
		need = need.Sub(take)

		result.Quantity = result.Quantity.Add(take)
		result.Value = result.Value.Add(take.Mul(lot.UnitCost))
		result.Slices = append(result.Slices, Slice{
			BatchID:    lot.BatchID,
			Quantity:   take,
			UnitCost:   lot.UnitCost,
			ReceivedAt: lot.ReceivedAt,
			ExpiresAt:  lot.ExpiresAt,
		})
	}

	if need.IsPositive() {
		result.Shortfall = need
	}

	l.prune(key)
	return result
}

// prune drops lots at or below the empty tolerance to bound ledger growth.
func (l *Ledger) prune(key lotKey) {
	lots := l.lots[key]
	kept := lots[:0]
	for _, lot := range lots {
		if !types.IsEmptyQty(lot.Quantity) {
			kept = append(kept, lot)
		}
	}
	if len(kept) == 0 {
		delete(l.lots, key)
		return
	}
	l.lots[key] = kept
}

// Quantity returns the remaining quantity for (product, warehouse).
func (l *Ledger) Quantity(productID, warehouseID id.ID) types.Qty {
	total := types.Zero()
	for _, lot := range l.lots[lotKey{productID: productID, warehouseID: warehouseID}] {
		total = total.Add(lot.Quantity)
	}
	return total
}

// Value returns the remaining cost value for (product, warehouse).
func (l *Ledger) Value(productID, warehouseID id.ID) types.Money {
	total := types.Zero()
	for _, lot := range l.lots[lotKey{productID: productID, warehouseID: warehouseID}] {
		total = total.Add(lot.Quantity.Mul(lot.UnitCost))
	}
	return total
}

// Lots returns copies of the remaining lots for (product, warehouse) in
// FIFO order.
func (l *Ledger) Lots(productID, warehouseID id.ID) []Lot {
	stored := l.lots[lotKey{productID: productID, warehouseID: warehouseID}]
	out := make([]Lot, len(stored))
	for i, lot := range stored {
		out[i] = *lot
	}
	return out
}
