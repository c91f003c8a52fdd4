// Package identifiers provides the validated string identifiers passed
// across the core's boundaries: trader, instrument, and order identifiers.
// Each wraps a plain string with a format check at construction time so
// malformed identifiers are rejected at the edge rather than propagating.
package identifiers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TraderID identifies a trading node, formatted "NAME-TAG" (e.g.
// "TRADER-001"), mirroring the source identifier's validated format.
type TraderID struct {
	value string
}

// NewTraderID validates and constructs a TraderID. The value must contain
// exactly one hyphen separating a non-empty name from a non-empty tag.
func NewTraderID(value string) (TraderID, error) {
	if err := validateNameTag(value); err != nil {
		return TraderID{}, fmt.Errorf("identifiers: invalid trader id %q: %w", value, err)
	}
	return TraderID{value: value}, nil
}

func (t TraderID) String() string { return t.value }
func (t TraderID) IsZero() bool   { return t.value == "" }

// InstrumentID identifies a tradable instrument, formatted "SYMBOL.VENUE"
// (e.g. "AAPL.NASDAQ").
type InstrumentID struct {
	Symbol string
	Venue  string
}

// NewInstrumentID validates and constructs an InstrumentID from its
// "SYMBOL.VENUE" wire form.
func NewInstrumentID(value string) (InstrumentID, error) {
	symbol, venue, ok := strings.Cut(value, ".")
	if !ok || symbol == "" || venue == "" {
		return InstrumentID{}, fmt.Errorf("identifiers: invalid instrument id %q: expected SYMBOL.VENUE", value)
	}
	return InstrumentID{Symbol: symbol, Venue: venue}, nil
}

func (i InstrumentID) String() string {
	return i.Symbol + "." + i.Venue
}

func (i InstrumentID) IsZero() bool {
	return i.Symbol == "" && i.Venue == ""
}

// ClientOrderID is a client-assigned order identifier, unique per trader.
type ClientOrderID struct {
	value string
}

func NewClientOrderID(value string) (ClientOrderID, error) {
	if value == "" {
		return ClientOrderID{}, fmt.Errorf("identifiers: client order id must not be empty")
	}
	return ClientOrderID{value: value}, nil
}

func (c ClientOrderID) String() string { return c.value }
func (c ClientOrderID) IsZero() bool   { return c.value == "" }

// VenueOrderID is a venue-assigned order identifier.
type VenueOrderID struct {
	value string
}

func NewVenueOrderID(value string) (VenueOrderID, error) {
	if value == "" {
		return VenueOrderID{}, fmt.Errorf("identifiers: venue order id must not be empty")
	}
	return VenueOrderID{value: value}, nil
}

func (v VenueOrderID) String() string { return v.value }
func (v VenueOrderID) IsZero() bool   { return v.value == "" }

// IDGenerator produces fresh ClientOrderIDs for outbound orders, prefixed
// with the owning trader's id so ids remain traceable back to their issuer
// across logs and venue reports.
type IDGenerator struct {
	trader TraderID
}

func NewIDGenerator(trader TraderID) *IDGenerator {
	return &IDGenerator{trader: trader}
}

// GenerateClientOrderID returns a new, effectively-unique ClientOrderID of
// the form "<trader>-<uuid>".
func (g *IDGenerator) GenerateClientOrderID() ClientOrderID {
	id, _ := NewClientOrderID(fmt.Sprintf("%s-%s", g.trader, uuid.New()))
	return id
}

func validateNameTag(value string) error {
	name, tag, ok := strings.Cut(value, "-")
	if !ok || name == "" || tag == "" {
		return fmt.Errorf("expected NAME-TAG format")
	}
	return nil
}
