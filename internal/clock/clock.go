// Package clock provides the deterministic (TestClock) and wall (LiveClock)
// time sources shared across the core: both implement Clock, so components
// that schedule named timers and one-shot alerts are agnostic to whether
// they are running inside a backtest or against real time.
package clock

import "forsete/internal/common"

// Clock is the interface components depend on to read time and schedule
// named, callback-driven events. TestClock and LiveClock are the only two
// implementations: test code advances time explicitly and deterministically,
// live code is driven by the OS clock on a background scheduler.
type Clock interface {
	TimestampNs() common.UnixNanos
	Timestamp() float64
	TimestampMs() uint64
	TimestampUs() uint64

	TimerNames() []string
	TimerCount() int
	Timers() map[string]Timer
	NextTimeNs(name string) (common.UnixNanos, bool)

	RegisterDefaultHandler(callback TimeEventCallback)
	SetTimeAlertNs(name string, alertTimeNs common.UnixNanos, callback TimeEventCallback)
	SetTimerNs(name string, intervalNs uint64, startTimeNs common.UnixNanos, stopTimeNs *common.UnixNanos, callback TimeEventCallback)
	CancelTimer(name string)
	CancelTimers()
}

var (
	_ Clock = (*TestClock)(nil)
	_ Clock = (*LiveClock)(nil)
)
