package clock

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"forsete/internal/common"
)

// TimeEvent is a point-in-time event produced by a firing Timer. ID
// uniquely identifies this particular firing for idempotency checks
// downstream; Name identifies the Timer that produced it.
type TimeEvent struct {
	Name    string
	ID      uuid.UUID
	TsEvent common.UnixNanos
	TsInit  common.UnixNanos
}

// TimeEventCallback receives a fired TimeEvent. Registered either per-timer
// (SetTimer/SetTimeAlert) or as a clock-wide default handler.
type TimeEventCallback func(event TimeEvent)

// TimeEventHandler pairs a fired event with the callback that should run
// it, resolved at fire time (per-timer callback if one was registered,
// otherwise the clock's default handler).
type TimeEventHandler struct {
	Event    TimeEvent
	Callback TimeEventCallback
}

// Timer is a named, possibly-repeating schedule. IntervalNs == 0 marks a
// one-shot time alert: it fires exactly once at NextTimeNs and is then
// expired. A non-zero IntervalNs repeats from StartTimeNs until StopTimeNs
// (if set) or indefinitely.
type Timer struct {
	Name        string
	Callback    TimeEventCallback // nil: defer to the clock's default handler
	IntervalNs  uint64
	StartTimeNs common.UnixNanos
	NextTimeNs  common.UnixNanos
	StopTimeNs  *common.UnixNanos
	Expired     bool
}

func newTimer(name string, intervalNs uint64, startTimeNs common.UnixNanos, stopTimeNs *common.UnixNanos, callback TimeEventCallback) *Timer {
	// A repeating timer's first fire is one interval after its start time,
	// not at the start time itself; a one-shot alert fires exactly at its
	// given time (intervalNs is 0, startTimeNs carries the alert time).
	nextTimeNs := startTimeNs
	if intervalNs != 0 {
		nextTimeNs = common.UnixNanos(uint64(startTimeNs) + intervalNs)
	}
	return &Timer{
		Name:        name,
		Callback:    callback,
		IntervalNs:  intervalNs,
		StartTimeNs: startTimeNs,
		NextTimeNs:  nextTimeNs,
		StopTimeNs:  stopTimeNs,
	}
}

// advance returns the TimeEvent fired by crossing toTimeNs, if any, and
// advances NextTimeNs to the following fire time. A one-shot timer is
// marked Expired after its single event fires.
func (t *Timer) advance(toTimeNs common.UnixNanos) (TimeEvent, bool) {
	if t.Expired || t.NextTimeNs > toTimeNs {
		return TimeEvent{}, false
	}

	event := TimeEvent{Name: t.Name, ID: uuid.New(), TsEvent: t.NextTimeNs, TsInit: toTimeNs}

	if t.IntervalNs == 0 {
		t.Expired = true
		return event, true
	}

	next := uint64(t.NextTimeNs) + t.IntervalNs
	if t.StopTimeNs != nil && next > uint64(*t.StopTimeNs) {
		t.Expired = true
	} else {
		t.NextTimeNs = common.UnixNanos(next)
	}
	return event, true
}

// registry is the timer bookkeeping shared by TestClock and LiveClock: both
// clocks differ only in how "now" advances, not in how timers are named,
// stored, or cancelled.
type registry struct {
	timers         map[string]*Timer
	defaultHandler TimeEventCallback
}

func newRegistry() registry {
	return registry{timers: make(map[string]*Timer)}
}

func (r *registry) registerDefaultHandler(callback TimeEventCallback) {
	if callback == nil {
		panic(fmt.Errorf("clock: cannot register a nil default handler"))
	}
	r.defaultHandler = callback
}

func (r *registry) setTimeAlertNs(name string, alertTimeNs common.UnixNanos, callback TimeEventCallback) {
	r.setTimer(name, 0, alertTimeNs, nil, callback)
}

func (r *registry) setTimer(name string, intervalNs uint64, startTimeNs common.UnixNanos, stopTimeNs *common.UnixNanos, callback TimeEventCallback) {
	if callback == nil && r.defaultHandler == nil {
		panic(fmt.Errorf("clock: no callback for timer %q and no default handler registered", name))
	}
	// Replacing an existing timer name overwrites it outright.
	r.timers[name] = newTimer(name, intervalNs, startTimeNs, stopTimeNs, callback)
}

func (r *registry) cancelTimer(name string) {
	delete(r.timers, name)
}

func (r *registry) cancelTimers() {
	r.timers = make(map[string]*Timer)
}

func (r *registry) timerNames() []string {
	names := make([]string, 0, len(r.timers))
	for name := range r.timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry) timerCount() int {
	return len(r.timers)
}

// timersSnapshot returns a copy of every registered Timer keyed by name, so
// callers cannot mutate the registry's own bookkeeping through the result.
func (r *registry) timersSnapshot() map[string]Timer {
	out := make(map[string]Timer, len(r.timers))
	for name, timer := range r.timers {
		out[name] = *timer
	}
	return out
}

func (r *registry) nextTimeNs(name string) (common.UnixNanos, bool) {
	timer, ok := r.timers[name]
	if !ok {
		return 0, false
	}
	return timer.NextTimeNs, true
}

// resolveHandler picks the callback that should run a fired event: the
// timer's own if registered, otherwise the clock's default. Firing a timer
// with neither is a fatal configuration error, guarded against at
// registration time by setTimer/setTimeAlertNs.
func (r *registry) resolveHandler(timerName string) TimeEventCallback {
	if timer, ok := r.timers[timerName]; ok && timer.Callback != nil {
		return timer.Callback
	}
	if r.defaultHandler == nil {
		panic(fmt.Errorf("clock: timer %q fired with no callback and no default handler registered", timerName))
	}
	return r.defaultHandler
}
