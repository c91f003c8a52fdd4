package clock

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"forsete/internal/common"
)

// schedulerTick is how often the live scheduler wakes to check for expired
// timers. Real deployments care about millisecond-scale timer precision,
// not nanosecond, so a short fixed tick is cheap and accurate enough.
const schedulerTick = time.Millisecond

// LiveClock reads the OS monotonic wall clock and runs registered timers on
// a background goroutine supervised by a tomb.Tomb.
type LiveClock struct {
	mu  sync.Mutex
	reg registry
	t   *tomb.Tomb
}

// NewLiveClock creates a LiveClock and starts its background scheduler.
func NewLiveClock() *LiveClock {
	c := &LiveClock{reg: newRegistry(), t: new(tomb.Tomb)}
	c.t.Go(c.run)
	return c
}

// Stop halts the background scheduler and waits for it to exit.
func (c *LiveClock) Stop() error {
	c.t.Kill(nil)
	return c.t.Wait()
}

func (c *LiveClock) TimestampNs() common.UnixNanos {
	return common.UnixNanosFromTime(time.Now())
}

func (c *LiveClock) Timestamp() float64 {
	return c.TimestampNs().AsF64Secs()
}

func (c *LiveClock) TimestampMs() uint64 {
	return c.TimestampNs().AsMillis()
}

func (c *LiveClock) TimestampUs() uint64 {
	return c.TimestampNs().AsMicros()
}

func (c *LiveClock) RegisterDefaultHandler(callback TimeEventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.registerDefaultHandler(callback)
}

func (c *LiveClock) SetTimeAlertNs(name string, alertTimeNs common.UnixNanos, callback TimeEventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.setTimeAlertNs(name, alertTimeNs, callback)
}

func (c *LiveClock) SetTimerNs(name string, intervalNs uint64, startTimeNs common.UnixNanos, stopTimeNs *common.UnixNanos, callback TimeEventCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.setTimer(name, intervalNs, startTimeNs, stopTimeNs, callback)
}

func (c *LiveClock) CancelTimer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.cancelTimer(name)
}

func (c *LiveClock) CancelTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.cancelTimers()
}

func (c *LiveClock) TimerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.timerNames()
}

func (c *LiveClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.timerCount()
}

func (c *LiveClock) NextTimeNs(name string) (common.UnixNanos, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.nextTimeNs(name)
}

// Timers returns a copy of every registered Timer keyed by name.
func (c *LiveClock) Timers() map[string]Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.timersSnapshot()
}

// run is the supervised scheduler loop: it wakes on a fixed tick, advances
// every registered timer against the current wall clock, and dispatches
// any events fired directly to their resolved handlers. Handlers run
// synchronously on the scheduler goroutine; slow handlers delay subsequent
// ticks and should offload real work themselves.
func (c *LiveClock) run() error {
	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-c.t.Dying():
			return nil
		case now := <-ticker.C:
			c.fireDue(common.UnixNanosFromTime(now))
		}
	}
}

func (c *LiveClock) fireDue(nowNs common.UnixNanos) {
	c.mu.Lock()
	var handlers []TimeEventHandler
	for _, timer := range c.reg.timers {
		for {
			event, fired := timer.advance(nowNs)
			if !fired {
				break
			}
			handlers = append(handlers, TimeEventHandler{
				Event:    event,
				Callback: c.reg.resolveHandler(event.Name),
			})
			if timer.IntervalNs == 0 {
				break
			}
		}
	}
	c.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("timer", h.Event.Name).Msg("time event callback panicked")
				}
			}()
			h.Callback(h.Event)
		}()
	}
}
