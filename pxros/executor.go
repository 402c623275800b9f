package pxros

import (
	"fmt"
	"log/slog"

	"github.com/b97tsk/pxasync"
)

// An Executor is a [pxasync.RawExecutor] that waits on a kernel mailbox and
// a fixed universe of events.
//
// Each call to Wait performs kernel receives until at least one task is
// ready (or, when it must not block, drains what is already pending once).
// Delivered events are broadcast to every task awaiting them; a delivered
// message goes to the one task awaiting a message, and is released with
// a warning when there is none.
type Executor struct {
	receiver Receiver
	logger   *slog.Logger
}

// ExecutorOption configures an [Executor].
type ExecutorOption func(*Executor)

// WithLogger sets the logger an [Executor] reports dispatch problems and
// status to.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(x *Executor) {
		x.logger = l
	}
}

// NewExecutor returns an [Executor] receiving messages from mbx and the
// events in universe. Tasks must not await events outside universe.
func NewExecutor(k Kernel, mbx Mailbox, universe Events, opts ...ExecutorOption) *Executor {
	x := &Executor{
		receiver: NewReceiver(k, mbx, universe),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Universe returns the events x receives.
func (x *Executor) Universe() Events {
	return x.receiver.Events()
}

// NewContext implements [pxasync.RawExecutor].
func (x *Executor) NewContext() TaskData {
	return TaskData{}
}

// Wait implements [pxasync.RawExecutor].
func (x *Executor) Wait(tasks []*pxasync.Context[TaskData], mayBlock bool) {
	universe := x.receiver.Events()

	waiter := messageWaiter(tasks)

	for {
		stop := !mayBlock

		events, m := x.receive(stop)

		x.logger.Debug("dispatch",
			slog.Bool("blocking", mayBlock),
			slog.Any("events", events),
			slog.Bool("message", m != nil),
			slog.Int("tasks", len(tasks)),
		)

		for _, cx := range tasks {
			d := cx.LocalData()
			if unsupported := d.AwaitingEvents().Difference(universe); !unsupported.IsEmpty() {
				panic(fmt.Sprintf("pxros: task awaits events %v outside of executor universe %v", unsupported, universe))
			}
			if d.TriggerEvents(events) {
				cx.MarkReady()
				stop = true
			}
		}

		if m != nil && x.dispatchMessage(waiter, m) {
			stop = true
		}

		if stop {
			return
		}
	}
}

func (x *Executor) receive(nonBlocking bool) (Events, *Message) {
	if nonBlocking {
		events := x.receiver.ResetEvents()
		m, err := x.receiver.TryReceive()
		if err != nil {
			x.logger.Warn("try receive failed", slog.Any("error", err))
		}
		return events, m
	}
	events, m, err := x.receiver.Receive()
	if err != nil {
		x.logger.Warn("receive failed", slog.Any("error", err))
	}
	return events, m
}

// messageWaiter returns the task awaiting a message, or nil if there is
// none. It panics if there is more than one.
func messageWaiter(tasks []*pxasync.Context[TaskData]) *pxasync.Context[TaskData] {
	var found *pxasync.Context[TaskData]
	for _, cx := range tasks {
		if cx.LocalData().AwaitingMessage() {
			if found != nil {
				panic("pxros: only one task at a time can wait for a message")
			}
			found = cx
		}
	}
	return found
}

func (x *Executor) dispatchMessage(waiter *pxasync.Context[TaskData], m *Message) bool {
	if waiter != nil && waiter.LocalData().TriggerMessage(m) {
		waiter.MarkReady()
		return true
	}

	x.logger.Warn("no task awaits message, dropping it", slog.Any("message", m))
	if err := m.Release(); err != nil {
		x.logger.Warn("release dropped message failed", slog.Any("error", err))
	}
	return false
}

// Run runs tasks on an executor backed by x until all of them complete or
// one of them completes with a result that bails (see [pxasync.DefaultBail]).
//
// Run returns one [pxasync.Outcome] per task, in the order of tasks.
func Run[R any](x *Executor, tasks ...*pxasync.TaskStorage[TaskData, R]) []pxasync.Outcome[R] {
	e := pxasync.New[TaskData, R](x, len(tasks))
	for _, t := range tasks {
		e.Add(t)
	}
	return e.Run()
}
