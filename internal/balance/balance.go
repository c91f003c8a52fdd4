// Package balance models account and margin balances, mirroring the
// source implementation's dictionary (de)serialization used to report
// balances across the FFI boundary: every amount is carried as an exact
// decimal.Decimal, never a float, and round-trips through YAML the same
// way it round-trips through a Python dict.
package balance

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"forsete/internal/identifiers"
)

// Money pairs an exact amount with its currency code.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.String(), m.Currency)
}

// AccountBalance is the total/locked/free breakdown for one currency on an
// account. NewAccountBalance enforces the same invariant as the source's
// new_checked: total must equal locked+free.
type AccountBalance struct {
	Total  Money
	Locked Money
	Free   Money
}

// NewAccountBalance validates that total == locked + free before
// constructing, matching the source's new_checked behavior: a caller
// passing an inconsistent breakdown gets an error, not a silently wrong
// balance.
func NewAccountBalance(total, locked, free Money) (AccountBalance, error) {
	if total.Currency != locked.Currency || total.Currency != free.Currency {
		return AccountBalance{}, fmt.Errorf("balance: currency mismatch: total=%s locked=%s free=%s",
			total.Currency, locked.Currency, free.Currency)
	}
	if !total.Amount.Equal(locked.Amount.Add(free.Amount)) {
		return AccountBalance{}, fmt.Errorf("balance: total %s does not equal locked %s + free %s",
			total.Amount, locked.Amount, free.Amount)
	}
	return AccountBalance{Total: total, Locked: locked, Free: free}, nil
}

// accountBalanceDict is the wire shape for AccountBalance: a dict of
// currency-formatted decimal strings, matching the source's to_dict/from_dict.
type accountBalanceDict struct {
	Type     string `yaml:"type"`
	Total    string `yaml:"total"`
	Locked   string `yaml:"locked"`
	Free     string `yaml:"free"`
	Currency string `yaml:"currency"`
}

// ToDict renders the balance the same way the source's to_dict does: every
// amount as a decimal string at the currency's display precision.
func (b AccountBalance) ToDict(precision int32) map[string]string {
	return map[string]string{
		"type":     "AccountBalance",
		"total":    b.Total.Amount.StringFixed(precision),
		"locked":   b.Locked.Amount.StringFixed(precision),
		"free":     b.Free.Amount.StringFixed(precision),
		"currency": b.Total.Currency,
	}
}

// AccountBalanceFromDict parses the wire dict produced by ToDict (or an
// equivalent producer), reconstructing exact decimals from their strings.
func AccountBalanceFromDict(dict map[string]string) (AccountBalance, error) {
	total, err := decimal.NewFromString(dict["total"])
	if err != nil {
		return AccountBalance{}, fmt.Errorf("balance: parsing total: %w", err)
	}
	locked, err := decimal.NewFromString(dict["locked"])
	if err != nil {
		return AccountBalance{}, fmt.Errorf("balance: parsing locked: %w", err)
	}
	free, err := decimal.NewFromString(dict["free"])
	if err != nil {
		return AccountBalance{}, fmt.Errorf("balance: parsing free: %w", err)
	}
	currency := dict["currency"]
	return NewAccountBalance(
		NewMoney(total, currency),
		NewMoney(locked, currency),
		NewMoney(free, currency),
	)
}

// MarshalYAML renders the balance as YAML using the same field layout as
// ToDict, so balances can be persisted or transmitted as config/log
// payloads with the source's dictionary shape.
func (b AccountBalance) MarshalYAML() (interface{}, error) {
	return accountBalanceDict{
		Type:     "AccountBalance",
		Total:    b.Total.Amount.String(),
		Locked:   b.Locked.Amount.String(),
		Free:     b.Free.Amount.String(),
		Currency: b.Total.Currency,
	}, nil
}

func (b *AccountBalance) UnmarshalYAML(node *yaml.Node) error {
	var dict accountBalanceDict
	if err := node.Decode(&dict); err != nil {
		return err
	}
	parsed, err := AccountBalanceFromDict(map[string]string{
		"total": dict.Total, "locked": dict.Locked, "free": dict.Free, "currency": dict.Currency,
	})
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarginBalance is the initial/maintenance margin requirement an account
// holds against one instrument.
type MarginBalance struct {
	Initial     Money
	Maintenance Money
	Instrument  identifiers.InstrumentID
}

func NewMarginBalance(initial, maintenance Money, instrument identifiers.InstrumentID) MarginBalance {
	return MarginBalance{Initial: initial, Maintenance: maintenance, Instrument: instrument}
}

func (m MarginBalance) ToDict(precision int32) map[string]string {
	return map[string]string{
		"type":          "MarginBalance",
		"initial":       m.Initial.Amount.StringFixed(precision),
		"maintenance":   m.Maintenance.Amount.StringFixed(precision),
		"currency":      m.Initial.Currency,
		"instrument_id": m.Instrument.String(),
	}
}

func MarginBalanceFromDict(dict map[string]string) (MarginBalance, error) {
	initial, err := decimal.NewFromString(dict["initial"])
	if err != nil {
		return MarginBalance{}, fmt.Errorf("balance: parsing initial: %w", err)
	}
	maintenance, err := decimal.NewFromString(dict["maintenance"])
	if err != nil {
		return MarginBalance{}, fmt.Errorf("balance: parsing maintenance: %w", err)
	}
	instrument, err := identifiers.NewInstrumentID(dict["instrument_id"])
	if err != nil {
		return MarginBalance{}, fmt.Errorf("balance: parsing instrument_id: %w", err)
	}
	currency := dict["currency"]
	return NewMarginBalance(
		NewMoney(initial, currency),
		NewMoney(maintenance, currency),
		instrument,
	), nil
}
