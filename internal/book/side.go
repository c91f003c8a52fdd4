package book

import "github.com/tidwall/btree"

// Side is the price-ordered container a book builder holds one of per
// side of an instrument's book: a btree of Levels ordered by the side's
// BookPrice comparator, so the best price sits at the minimum of the
// tree regardless of whether this is a bid or ask side. It is not a
// matching engine — it offers lookup, upsert, and removal by price only.
type Side struct {
	levels *btree.BTreeG[*Level]
}

// NewSide creates an empty Side. It takes no side argument: ordering comes
// from each stored Level's own BookPrice, so every Level stored in it must
// share one side (callers keep bids and asks in separate Sides, per the
// book-price design: cross-side comparison is undefined).
func NewSide() *Side {
	return &Side{
		levels: btree.NewBTreeG(func(a, b *Level) bool {
			return a.Less(b)
		}),
	}
}

// Upsert inserts level if its price is not already present, or returns
// the existing level at that price otherwise. The returned bool is true
// when an existing level was found.
func (s *Side) Upsert(level *Level) (*Level, bool) {
	if existing, ok := s.levels.Get(level); ok {
		return existing, true
	}
	s.levels.Set(level)
	return level, false
}

// Get looks up the level at a given price, if any.
func (s *Side) Get(price BookPrice) (*Level, bool) {
	return s.levels.Get(&Level{Price: price})
}

// Delete removes the level at a given price.
func (s *Side) Delete(price BookPrice) {
	s.levels.Delete(&Level{Price: price})
}

// Best returns the level at the best price for this side (lowest in the
// tree's ordering, which Less defines as the side's best), or false if
// the side is empty.
func (s *Side) Best() (*Level, bool) {
	return s.levels.Min()
}

// Len returns the number of distinct price levels on this side.
func (s *Side) Len() int {
	return s.levels.Len()
}

// Levels returns every level on this side in best-to-worst order.
func (s *Side) Levels() []*Level {
	out := make([]*Level, 0, s.levels.Len())
	s.levels.Scan(func(l *Level) bool {
		out = append(out, l)
		return true
	})
	return out
}
