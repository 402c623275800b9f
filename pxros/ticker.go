package pxros

import (
	"fmt"
	"time"

	"fortio.org/safecast"
	"github.com/b97tsk/pxasync"
)

// TickLength is the duration of one kernel clock tick.
const TickLength = time.Millisecond

// DurationToTicks converts d to kernel ticks, rounding down.
//
// It fails if d is negative or too long to be expressed in [Ticks].
func DurationToTicks(d time.Duration) (Ticks, error) {
	n, err := safecast.Conv[uint32](int64(d / TickLength))
	if err != nil {
		return 0, fmt.Errorf("pxros: duration %v out of tick range: %w", d, err)
	}
	return Ticks(n), nil
}

// A Ticker signals an event to the task that started it, every period.
type Ticker struct {
	kernel  Kernel
	event   Events
	handle  PeriodicHandle
	stopped bool
}

// Every starts a [Ticker] signalling event every period.
func Every(k Kernel, event Events, period time.Duration) (*Ticker, error) {
	if event.IsEmpty() {
		return nil, ErrIllegalEvents
	}
	ticks, err := DurationToTicks(period)
	if err != nil {
		return nil, err
	}
	if ticks == 0 {
		return nil, fmt.Errorf("pxros: ticker period %v shorter than a tick", period)
	}
	h, err := k.StartPeriodic(event, ticks)
	if err != nil {
		return nil, err
	}
	return &Ticker{kernel: k, event: event, handle: h}, nil
}

// After blocks the calling task for d, using event as the timer event.
func After(k Kernel, event Events, d time.Duration) error {
	t, err := Every(k, event, d)
	if err != nil {
		return err
	}
	t.Wait()
	return t.Stop()
}

// Event returns the event t signals.
func (t *Ticker) Event() Events { return t.event }

// Wait blocks until the next tick.
func (t *Ticker) Wait() {
	if got := t.kernel.AwaitEvents(t.event); got != t.event {
		panic(fmt.Sprintf("pxros: ticker awaited %v, got %v", t.event, got))
	}
}

// Next returns a [pxasync.Future] that completes on the next tick.
//
// Next is meant for tasks run by an [Executor] whose universe includes the
// event of t.
func (t *Ticker) Next() pxasync.Future[TaskData, struct{}] {
	return pxasync.Map(WaitForEvent(t.event), func(Events) struct{} { return struct{}{} })
}

// Stop stops t. Stopping a stopped Ticker does nothing.
func (t *Ticker) Stop() error {
	if t.stopped {
		return nil
	}
	if err := t.kernel.StopPeriodic(t.handle); err != nil {
		return err
	}
	t.stopped = true
	// Drop a tick that fired in between.
	t.kernel.ResetEvents(t.event)
	return nil
}
