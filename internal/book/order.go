package book

import "forsete/internal/common"

// OrderID is the 64-bit key a BookOrder is stored and looked up by. It is
// expected unique within a single book side, but uniqueness is the
// caller's responsibility — the level itself only asserts consistency of
// price, never of id provenance.
type OrderID = uint64

// BookOrder is the value type the book level engine operates on: a side,
// price, size, and id. It carries no timestamp or owner — those belong to
// whatever external collaborator (a matching engine, a reporting layer)
// consumes Level state.
type BookOrder struct {
	Side    common.Side
	Price   common.Price
	Size    common.Quantity
	OrderID OrderID
}

// NewBookOrder constructs a BookOrder.
func NewBookOrder(side common.Side, price common.Price, size common.Quantity, orderID OrderID) BookOrder {
	return BookOrder{Side: side, Price: price, Size: size, OrderID: orderID}
}

// ToBookPrice derives the BookPrice this order belongs at.
func (o BookOrder) ToBookPrice() BookPrice {
	return NewBookPrice(o.Price, o.Side)
}
