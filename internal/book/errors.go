package book

import (
	"fmt"

	"forsete/internal/common"
)

// IntegrityError reports a fatal book invariant violation: the process is
// in an inconsistent state and the caller is not expected to recover.
// remove_by_id carries (order_id, sequence, ts_event) purely as
// diagnostics — sequence and ts_event are opaque to the level itself.
type IntegrityError struct {
	OrderID  OrderID
	Sequence uint64
	TsEvent  common.UnixNanos
	reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error: %s: order_id=%d, sequence=%d, ts_event=%d",
		e.reason, e.OrderID, e.Sequence, e.TsEvent)
}

func newOrderNotFoundError(orderID OrderID, sequence uint64, tsEvent common.UnixNanos) *IntegrityError {
	return &IntegrityError{OrderID: orderID, Sequence: sequence, TsEvent: tsEvent, reason: "order not found"}
}

// PriceMismatchError is raised when an order's price does not match the
// level it is being added or updated into. Fatal: price-mismatch and
// integrity errors are never recoverable, the data structure they'd
// protect is already corrupt.
type PriceMismatchError struct {
	Expected common.Price
	Actual   common.Price
	OrderID  OrderID
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price mismatch: order_id=%d expected=%s actual=%s",
		e.OrderID, e.Expected, e.Actual)
}
