package book

import "forsete/internal/common"

// BookPrice pairs a fixed-point price with the book side it sits on. The
// side drives comparison: bid levels sort descending (the highest bid is
// "best"), ask levels sort ascending (the lowest ask is "best") — so Less
// on Buy is the reverse of Less on Sell. Comparing a Buy BookPrice against
// a Sell BookPrice is meaningless at the design level; callers keep each
// side in its own container.
type BookPrice struct {
	Value common.Price
	Side  common.Side
}

// NewBookPrice builds a BookPrice for the given value and side.
func NewBookPrice(value common.Price, side common.Side) BookPrice {
	return BookPrice{Value: value, Side: side}
}

// Equal reports value equality, ignoring side — two levels with the same
// numeric price are equal for the purposes of a single book side's set
// membership, regardless of which side constructed them.
func (p BookPrice) Equal(other BookPrice) bool {
	return p.Value.Raw == other.Value.Raw
}

// Less implements the side-dependent ordering: descending for Buy,
// ascending for Sell.
func (p BookPrice) Less(other BookPrice) bool {
	if p.Side == common.Sell {
		return p.Value.Raw < other.Value.Raw
	}
	return p.Value.Raw > other.Value.Raw
}

// Greater is the strict converse of Less (neither less nor equal).
func (p BookPrice) Greater(other BookPrice) bool {
	return !p.Less(other) && !p.Equal(other)
}
