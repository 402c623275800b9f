package pxros

import "github.com/b97tsk/pxasync"

// TaskData is the task-local data of tasks run by an [Executor].
//
// It records what a task waits for (a set of events, a message, or both)
// and what the dispatch loop delivered on its behalf (latched events and at
// most one buffered message).
//
// TaskData is only touched by its own task and by the dispatch loop, never
// at the same time.
type TaskData struct {
	awaitingEvents  Events
	triggeredEvents Events
	awaitingMessage bool
	message         *Message
}

// PollEvent consumes any of want that was latched for d and returns it.
// If none was, it records want as awaited and returns false.
//
// Once PollEvent succeeds, the other bits of want are no longer awaited.
func (d *TaskData) PollEvent(want Events) (Events, bool) {
	if want.IsEmpty() {
		panic("pxros: waiting for no events")
	}
	if got := d.triggeredEvents.Intersect(want); !got.IsEmpty() {
		d.triggeredEvents = d.triggeredEvents.Difference(got)
		d.awaitingEvents = d.awaitingEvents.Difference(want)
		return got, true
	}
	d.awaitingEvents = d.awaitingEvents.Union(want)
	return NoEvents, false
}

// PollMessage returns the message buffered for d, if any. Otherwise it
// records that d awaits a message and returns false.
//
// Only one task of an [Executor] may await a message at a time; the
// Executor panics otherwise.
func (d *TaskData) PollMessage() (*Message, bool) {
	if m := d.message; m != nil {
		d.message = nil
		return m, true
	}
	d.awaitingMessage = true
	return nil, false
}

// TriggerEvents latches the events d awaits among events, and reports
// whether there were any.
//
// TriggerEvents panics if a latched event has not been consumed yet. Tasks
// using [TaskData.PollEvent] never get there: PollEvent consumes latched
// bits before awaiting them again, so awaited and latched events stay
// disjoint.
func (d *TaskData) TriggerEvents(events Events) bool {
	relevant := events.Intersect(d.awaitingEvents)
	d.awaitingEvents = d.awaitingEvents.Difference(relevant)
	if relevant.Intersects(d.triggeredEvents) {
		panic("pxros: task data can store only one triggered event batch")
	}
	d.triggeredEvents = d.triggeredEvents.Union(relevant)
	return !relevant.IsEmpty()
}

// TriggerMessage buffers m for d if d awaits a message, and reports whether
// it did.
func (d *TaskData) TriggerMessage(m *Message) bool {
	if !d.awaitingMessage {
		return false
	}
	d.awaitingMessage = false
	d.message = m
	return true
}

// AwaitingEvents returns the events d waits for.
func (d *TaskData) AwaitingEvents() Events { return d.awaitingEvents }

// TriggeredEvents returns the events latched for d and not consumed yet.
func (d *TaskData) TriggeredEvents() Events { return d.triggeredEvents }

// AwaitingMessage reports whether d waits for a message.
func (d *TaskData) AwaitingMessage() bool { return d.awaitingMessage }

// HasMessage reports whether a message is buffered for d.
func (d *TaskData) HasMessage() bool { return d.message != nil }

// WaitForEvent returns a [pxasync.Future] that completes with the events
// among want once any of them is signalled.
func WaitForEvent(want Events) pxasync.Future[TaskData, Events] {
	return pxasync.PollFunc[TaskData, Events](func(cx *pxasync.Context[TaskData]) pxasync.Poll[Events] {
		if got, ok := cx.LocalData().PollEvent(want); ok {
			return pxasync.Ready(got)
		}
		return pxasync.Pending[Events]()
	})
}

// WaitForMessage returns a [pxasync.Future] that completes with the next
// message received by the [Executor]. The message must be released by the
// task.
func WaitForMessage() pxasync.Future[TaskData, *Message] {
	return pxasync.PollFunc[TaskData, *Message](func(cx *pxasync.Context[TaskData]) pxasync.Poll[*Message] {
		if m, ok := cx.LocalData().PollMessage(); ok {
			return pxasync.Ready(m)
		}
		return pxasync.Pending[*Message]()
	})
}

// Receive returns a [pxasync.Future] that waits for the next message,
// decodes it into a T with [DecodeMessage], and releases it.
func Receive[T any]() pxasync.Future[TaskData, pxasync.Result[T]] {
	return pxasync.Map(WaitForMessage(), func(m *Message) pxasync.Result[T] {
		var v T
		err := DecodeMessage(m, &v)
		if rerr := m.Release(); err == nil {
			err = rerr
		}
		if err != nil {
			return pxasync.Err[T](err)
		}
		return pxasync.Ok(v)
	})
}
