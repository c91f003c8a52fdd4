package bookbuilder

import (
	"sync"

	"github.com/rs/zerolog/log"

	"forsete/internal/book"
	"forsete/internal/clock"
	"forsete/internal/common"
)

// InstrumentBook is the pair of book.Side containers (bid and ask) the
// builder maintains for one instrument.
type InstrumentBook struct {
	Bids *book.Side
	Asks *book.Side
}

func newInstrumentBook() *InstrumentBook {
	return &InstrumentBook{Bids: book.NewSide(), Asks: book.NewSide()}
}

func (ib *InstrumentBook) sideFor(side common.Side) *book.Side {
	if side == common.Buy {
		return ib.Bids
	}
	return ib.Asks
}

// Builder consumes decoded venue frames and applies them to per-instrument
// Book Level Engine sides. It is a thin dispatcher: all the invariant
// enforcement lives in the book package itself, including the fatal panics
// on integrity violations a malformed venue feed would trigger.
type Builder struct {
	clock clock.Clock

	mu         sync.Mutex
	instrument map[string]*InstrumentBook
	sequence   uint64
}

func NewBuilder(c clock.Clock) *Builder {
	return &Builder{clock: c, instrument: make(map[string]*InstrumentBook)}
}

// Instrument returns (creating if needed) the book maintained for a symbol.
func (b *Builder) Instrument(symbol string) *InstrumentBook {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instrumentLocked(symbol)
}

func (b *Builder) instrumentLocked(symbol string) *InstrumentBook {
	ib, ok := b.instrument[symbol]
	if !ok {
		ib = newInstrumentBook()
		b.instrument[symbol] = ib
	}
	return ib
}

// HandleFrame decodes one venue frame and applies it. It is the
// transport.MessageHandler a Socket Client is configured with when wired
// to this builder.
func (b *Builder) HandleFrame(data []byte) {
	update, err := ParseBookUpdate(data)
	if err != nil {
		log.Error().Err(err).Msg("bookbuilder: dropping malformed frame")
		return
	}
	b.Apply(update)
}

// Apply dispatches one decoded update onto the right instrument/side/level.
// Integrity violations (price mismatch, missing order id) propagate as
// panics from the underlying book.Level, matching the Book Level Engine's
// contract that such violations are unrecoverable.
func (b *Builder) Apply(update BookUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sequence++

	ib := b.instrumentLocked(update.Instrument)
	side := ib.sideFor(update.Side)
	bookPrice := book.NewBookPrice(update.Price, update.Side)

	switch update.Type {
	case UpdateAdd:
		level, _ := side.Upsert(book.NewLevel(bookPrice))
		level.Add(book.NewBookOrder(update.Side, update.Price, update.Size, book.OrderID(update.OrderID)))

	case UpdateModify:
		level, ok := side.Get(bookPrice)
		if !ok {
			log.Error().Str("instrument", update.Instrument).Uint64("order_id", update.OrderID).
				Msg("bookbuilder: modify for unknown price level")
			return
		}
		level.Update(book.NewBookOrder(update.Side, update.Price, update.Size, book.OrderID(update.OrderID)))
		if level.IsEmpty() {
			side.Delete(bookPrice)
		}

	case UpdateDelete:
		level, ok := side.Get(bookPrice)
		if !ok {
			log.Error().Str("instrument", update.Instrument).Uint64("order_id", update.OrderID).
				Msg("bookbuilder: delete for unknown price level")
			return
		}
		level.RemoveByID(book.OrderID(update.OrderID), b.sequence, b.clock.TimestampNs())
		if level.IsEmpty() {
			side.Delete(bookPrice)
		}
	}
}
