// Package bookbuilder is a demonstration external collaborator: it wires
// the Socket Client and Clock Core into mutations against per-instrument
// Book Level Engine sides, the way a real venue gateway would. It is not
// part of the core itself and carries none of the matching/crossing logic
// the core explicitly excludes.
package bookbuilder

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"

	"forsete/internal/common"
)

// UpdateType distinguishes the three book mutations a venue can send.
type UpdateType uint8

const (
	UpdateAdd UpdateType = iota
	UpdateModify
	UpdateDelete
)

const (
	instrumentFieldLen = 8
	// messageLen is the fixed wire size: type(1) + side(1) + instrument(8)
	// + price(8) + size(8) + order id(8).
	messageLen = 1 + 1 + instrumentFieldLen + 8 + 8 + 8
)

var ErrMessageTooShort = errors.New("bookbuilder: message shorter than fixed frame length")

// BookUpdate is a decoded venue book message: one order-level mutation for
// one instrument.
type BookUpdate struct {
	Type       UpdateType
	Side       common.Side
	Instrument string
	Price      common.Price
	Size       common.Quantity
	OrderID    uint64
}

// ParseBookUpdate decodes a fixed-layout binary frame, following the
// teacher's big-endian fixed-header wire format.
func ParseBookUpdate(data []byte) (BookUpdate, error) {
	if len(data) < messageLen {
		return BookUpdate{}, ErrMessageTooShort
	}

	updateType := UpdateType(data[0])
	side := common.Side(data[1])
	instrument := strings.TrimRight(string(data[2:2+instrumentFieldLen]), "\x00")

	offset := 2 + instrumentFieldLen
	priceBits := binary.BigEndian.Uint64(data[offset : offset+8])
	sizeBits := binary.BigEndian.Uint64(data[offset+8 : offset+16])
	orderID := binary.BigEndian.Uint64(data[offset+16 : offset+24])

	return BookUpdate{
		Type:       updateType,
		Side:       side,
		Instrument: instrument,
		Price:      common.NewPriceFromFloat(math.Float64frombits(priceBits)),
		Size:       common.NewQuantityFromFloat(math.Float64frombits(sizeBits)),
		OrderID:    orderID,
	}, nil
}

// EncodeBookUpdate is the inverse of ParseBookUpdate, provided for tests
// and for any component that needs to emit the same wire format (e.g. a
// simulated venue).
func EncodeBookUpdate(u BookUpdate) []byte {
	buf := make([]byte, messageLen)
	buf[0] = byte(u.Type)
	buf[1] = byte(u.Side)
	copy(buf[2:2+instrumentFieldLen], []byte(u.Instrument))

	offset := 2 + instrumentFieldLen
	binary.BigEndian.PutUint64(buf[offset:offset+8], math.Float64bits(u.Price.AsFloat64()))
	binary.BigEndian.PutUint64(buf[offset+8:offset+16], math.Float64bits(u.Size.AsFloat64()))
	binary.BigEndian.PutUint64(buf[offset+16:offset+24], u.OrderID)
	return buf
}
