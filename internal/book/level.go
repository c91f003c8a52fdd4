package book

import (
	"math"

	"forsete/internal/common"
	"github.com/shopspring/decimal"
)

// Level is a discrete price level in an order book: the set of resting
// orders sharing one price, FIFO-ordered by arrival. It is the hot-path
// data structure the rest of the core exists to feed and drain correctly.
//
// Invariants, held after every public method returns:
//   - every id in insertionOrder exists in orders
//   - every order stored satisfies order.Price == Price.Value
//   - len(orders) <= len(insertionOrder); stale ids in insertionOrder are
//     tolerated transiently but never observable to a reader
type Level struct {
	Price BookPrice

	orders         map[OrderID]BookOrder
	insertionOrder []OrderID
}

// NewLevel creates an empty level at the given price.
func NewLevel(price BookPrice) *Level {
	return &Level{
		Price:  price,
		orders: make(map[OrderID]BookOrder),
	}
}

// NewLevelFromOrder creates a level seeded with a single order, using the
// order's own price and side.
func NewLevelFromOrder(order BookOrder) *Level {
	level := NewLevel(order.ToBookPrice())
	level.Add(order)
	return level
}

// Len returns the number of live orders at this level.
func (l *Level) Len() int {
	return len(l.orders)
}

// IsEmpty reports whether the level has no live orders.
func (l *Level) IsEmpty() bool {
	return len(l.orders) == 0
}

// First returns the oldest live order by insertion order, or false if the
// level is empty.
func (l *Level) First() (BookOrder, bool) {
	if len(l.insertionOrder) == 0 {
		return BookOrder{}, false
	}
	id := l.insertionOrder[0]
	order, ok := l.orders[id]
	return order, ok
}

// GetOrders returns all live orders in FIFO insertion order.
func (l *Level) GetOrders() []BookOrder {
	out := make([]BookOrder, 0, len(l.orders))
	for _, id := range l.insertionOrder {
		if order, ok := l.orders[id]; ok {
			out = append(out, order)
		}
	}
	return out
}

// Size returns the total live size at this level as a float64.
func (l *Level) Size() float64 {
	var total float64
	for _, o := range l.orders {
		total += o.Size.AsFloat64()
	}
	return total
}

// SizeRaw returns the total live size at this level in raw integer units.
func (l *Level) SizeRaw() common.QuantityRaw {
	var total common.QuantityRaw
	for _, o := range l.orders {
		total += o.Size.Raw
	}
	return total
}

// SizeDecimal returns the total live size at this level as an exact
// decimal.
func (l *Level) SizeDecimal() decimal.Decimal {
	total := decimal.Zero
	for _, o := range l.orders {
		total = total.Add(o.Size.AsDecimal())
	}
	return total
}

// Exposure returns the total notional (price * size) across live orders,
// as a float64.
func (l *Level) Exposure() float64 {
	var total float64
	for _, o := range l.orders {
		total += o.Price.AsFloat64() * o.Size.AsFloat64()
	}
	return total
}

// ExposureRaw returns the total notional across live orders in raw
// integer units. Each order's exposure is rounded to raw units before
// summation rather than scaling the aggregate total — this preserves the
// source semantics and allows per-order rounding drift, which is an
// accepted property rather than a bug.
func (l *Level) ExposureRaw() common.QuantityRaw {
	var total common.QuantityRaw
	for _, o := range l.orders {
		total += common.QuantityRaw(math.Round((o.Price.AsFloat64() * o.Size.AsFloat64()) * common.FixedScalar))
	}
	return total
}

// AddBulk appends multiple orders to the level's FIFO tail in the given
// order. Every order must match the level's price; a mismatch is fatal.
func (l *Level) AddBulk(orders []BookOrder) {
	for _, o := range orders {
		l.checkOrderForThisLevel(o)
	}
	for _, o := range orders {
		l.insertionOrder = append(l.insertionOrder, o.OrderID)
		l.orders[o.OrderID] = o
	}
}

// Add appends a single order to the level's FIFO tail. The order must
// match the level's price; a mismatch is fatal.
func (l *Level) Add(order BookOrder) {
	l.checkOrderForThisLevel(order)
	l.orders[order.OrderID] = order
	l.insertionOrder = append(l.insertionOrder, order.OrderID)
}

// Update replaces an existing order's state without moving its FIFO
// position. If the updated size is zero, the order is removed instead
// (equivalent to Delete). The order's price must match the level's price.
func (l *Level) Update(order BookOrder) {
	l.checkOrderForThisLevel(order)

	if order.Size.IsZero() {
		delete(l.orders, order.OrderID)
		l.compactInsertionOrder()
		return
	}
	l.orders[order.OrderID] = order
}

// Delete removes an order by value, matching on its id.
func (l *Level) Delete(order BookOrder) {
	delete(l.orders, order.OrderID)
	l.compactInsertionOrder()
}

// RemoveByID removes an order by id. sequence and ts_event are carried
// purely as diagnostics for the integrity error raised if the id is
// absent — the level itself never inspects them.
func (l *Level) RemoveByID(orderID OrderID, sequence uint64, tsEvent common.UnixNanos) {
	if _, ok := l.orders[orderID]; !ok {
		panic(newOrderNotFoundError(orderID, sequence, tsEvent))
	}
	delete(l.orders, orderID)
	l.compactInsertionOrder()
}

func (l *Level) checkOrderForThisLevel(order BookOrder) {
	if order.Price.Raw != l.Price.Value.Raw {
		panic(&PriceMismatchError{Expected: l.Price.Value, Actual: order.Price, OrderID: order.OrderID})
	}
}

// compactInsertionOrder rebuilds insertionOrder to drop stale ids. It is
// guarded by a cheap scan so the common case (no tombstones pending) costs
// nothing beyond the scan itself, bounding amortized cost to O(N) over a
// delete-heavy workload rather than paying a rebuild on every delete.
func (l *Level) compactInsertionOrder() {
	stale := false
	for _, id := range l.insertionOrder {
		if _, ok := l.orders[id]; !ok {
			stale = true
			break
		}
	}
	if !stale {
		return
	}

	fresh := l.insertionOrder[:0:0]
	for _, id := range l.insertionOrder {
		if _, ok := l.orders[id]; ok {
			fresh = append(fresh, id)
		}
	}
	l.insertionOrder = fresh
}

// Equal delegates to Price, matching the source's PartialEq: levels are
// equal iff their prices are equal, regardless of their order contents.
func (l *Level) Equal(other *Level) bool {
	return l.Price.Equal(other.Price)
}

// Less delegates to Price's side-dependent ordering, letting owning
// containers (Side) sort levels with bid-best/ask-best at one end.
func (l *Level) Less(other *Level) bool {
	return l.Price.Less(other.Price)
}
