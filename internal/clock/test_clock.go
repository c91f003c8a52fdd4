package clock

import (
	"sort"
	"sync"

	"forsete/internal/common"
)

// TestClock is a deterministic clock driven entirely by SetTime/AdvanceTime
// calls. Nothing fires on a background goroutine: callers control exactly
// when time moves and collect the events that crossing produced.
type TestClock struct {
	mu      sync.Mutex
	timeNs  common.UnixNanos
	reg     registry
}

// NewTestClock creates a TestClock starting at time zero.
func NewTestClock() *TestClock {
	return &TestClock{reg: newRegistry()}
}

func (c *TestClock) TimestampNs() common.UnixNanos {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeNs
}

func (c *TestClock) Timestamp() float64 {
	return c.TimestampNs().AsF64Secs()
}

func (c *TestClock) TimestampMs() uint64 {
	return c.TimestampNs().AsMillis()
}

func (c *TestClock) TimestampUs() uint64 {
	return c.TimestampNs().AsMicros()
}

// SetTime pins the clock to a specific instant without evaluating any
// timers. Used to seed a clock's starting point before scheduling.
func (c *TestClock) SetTime(toTimeNs common.UnixNanos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeNs = toTimeNs
}

func (c *TestClock) RegisterDefaultHandler(callback TimeEventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.registerDefaultHandler(callback)
}

func (c *TestClock) SetTimeAlertNs(name string, alertTimeNs common.UnixNanos, callback TimeEventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.setTimeAlertNs(name, alertTimeNs, callback)
}

func (c *TestClock) SetTimerNs(name string, intervalNs uint64, startTimeNs common.UnixNanos, stopTimeNs *common.UnixNanos, callback TimeEventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.setTimer(name, intervalNs, startTimeNs, stopTimeNs, callback)
}

func (c *TestClock) CancelTimer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.cancelTimer(name)
}

func (c *TestClock) CancelTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.cancelTimers()
}

func (c *TestClock) TimerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.timerNames()
}

func (c *TestClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.timerCount()
}

func (c *TestClock) NextTimeNs(name string) (common.UnixNanos, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.nextTimeNs(name)
}

// Timers returns a copy of every registered Timer keyed by name.
func (c *TestClock) Timers() map[string]Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.timersSnapshot()
}

// AdvanceTime moves the clock forward to toTimeNs and returns every
// TimeEvent fired by crossing it, ordered by (TsEvent, Name) so ties
// between simultaneous timers resolve deterministically by name. When
// setTime is true the clock's current time becomes toTimeNs; otherwise the
// clock's own time is left untouched. Either way each timer's schedule moves
// past the events returned, so a later call does not return them again.
func (c *TestClock) AdvanceTime(toTimeNs common.UnixNanos, setTime bool) []TimeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	if toTimeNs < c.timeNs {
		panic("clock: cannot advance time backwards")
	}

	var events []TimeEvent
	for _, timer := range c.reg.timers {
		for {
			event, fired := timer.advance(toTimeNs)
			if !fired {
				break
			}
			events = append(events, event)
			if timer.IntervalNs == 0 {
				break
			}
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].TsEvent != events[j].TsEvent {
			return events[i].TsEvent < events[j].TsEvent
		}
		return events[i].Name < events[j].Name
	})

	if setTime {
		c.timeNs = toTimeNs
	}
	return events
}

// MatchHandlers resolves each event to the callback that should run it:
// the owning timer's own callback if one was registered, otherwise the
// clock's default handler. Mirrors advance_time's FFI-side two-step
// design, separating "what fired" from "who handles it".
func (c *TestClock) MatchHandlers(events []TimeEvent) []TimeEventHandler {
	c.mu.Lock()
	defer c.mu.Unlock()

	handlers := make([]TimeEventHandler, 0, len(events))
	for _, event := range events {
		handlers = append(handlers, TimeEventHandler{
			Event:    event,
			Callback: c.reg.resolveHandler(event.Name),
		})
	}
	return handlers
}
