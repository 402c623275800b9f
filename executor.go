package pxasync

// RawExecutor is the scheduling policy an [Executor] relies on.
//
// A RawExecutor decides how to wait for more work and what the task-local
// data of type L looks like. Tasks communicate with the policy by writing
// their interests (events, messages, and so on) into their local data; the
// policy reads them back and marks the matching tasks ready.
type RawExecutor[L any] interface {
	// NewContext returns fresh task-local data for a task being added.
	NewContext() L

	// Wait waits for and dispatches more work to tasks, marking the tasks
	// it makes runnable with [Context.MarkReady].
	//
	// When mayBlock is true, Wait may block until at least one task is
	// ready. When it is false, some task is ready already; Wait must only
	// drain pending input without stalling.
	//
	// tasks is owned by the executor and must not be retained.
	Wait(tasks []*Context[L], mayBlock bool)
}

// An Executor runs a fixed number of tasks on the calling goroutine.
//
// Tasks are polled only when their [ReadyFlag] is set. Within one pass,
// ready tasks are polled in the order they were added. Between passes, the
// Executor asks its [RawExecutor] to wait for more work.
//
// All bookkeeping is allocated by [New]; adding, polling, waking and
// dispatching allocate nothing.
type Executor[L, R any] struct {
	policy   RawExecutor[L]
	slots    []slot[L, R]
	contexts []*Context[L]
	added    int
	bail     func(R) bool
	ran      bool
}

type slot[L, R any] struct {
	index int
	task  *TaskStorage[L, R]
}

// Option configures an [Executor].
type Option[R any] func(*options[R])

type options[R any] struct {
	bail func(R) bool
}

// WithBail sets the predicate deciding whether a task result aborts
// a run.
func WithBail[R any](f func(R) bool) Option[R] {
	return func(o *options[R]) {
		o.bail = f
	}
}

// DefaultBail is the predicate an [Executor] uses unless [WithBail] says
// otherwise.
//
// A value with a Bail method is asked; a non-nil error bails; anything
// else does not.
func DefaultBail[R any](v R) bool {
	switch v := any(v).(type) {
	case interface{ Bail() bool }:
		return v.Bail()
	case error:
		return v != nil
	}
	return false
}

// New creates an [Executor] bound to policy, able to run up to capacity
// tasks.
func New[L, R any](policy RawExecutor[L], capacity int, opts ...Option[R]) *Executor[L, R] {
	if policy == nil {
		panic("pxasync: nil RawExecutor")
	}
	if capacity < 0 {
		panic("pxasync: negative capacity")
	}
	o := options[R]{bail: DefaultBail[R]}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bail == nil {
		panic("pxasync: WithBail(nil): undefined behavior")
	}
	return &Executor[L, R]{
		policy:   policy,
		slots:    make([]slot[L, R], 0, capacity),
		contexts: make([]*Context[L], 0, capacity),
		bail:     o.bail,
	}
}

// Cap returns the maximum number of tasks e can run.
func (e *Executor[L, R]) Cap() int {
	return cap(e.slots)
}

// Len returns the number of tasks added to e that have not completed.
func (e *Executor[L, R]) Len() int {
	return len(e.slots)
}

// Add initializes t with fresh task-local data from the policy, marks it
// ready so that it is polled at least once, and appends it to e.
//
// Add panics if e is full, if t has already been initialized, or if e has
// already run.
func (e *Executor[L, R]) Add(t *TaskStorage[L, R]) {
	if e.ran {
		panic("pxasync: executor has already run")
	}
	if len(e.slots) == cap(e.slots) {
		panic("pxasync: executor has no space left for a new task")
	}

	t.Init(e.policy.NewContext())
	t.cx.MarkReady()

	e.slots = append(e.slots, slot[L, R]{index: e.added, task: t})
	e.contexts = append(e.contexts, &t.cx)
	e.added++
}

// Run polls ready tasks until either all of them complete, or one of them
// completes with a result the bail predicate (see [WithBail]) holds true
// for.
//
// Run returns one [Outcome] per slot of e, in the order tasks were added,
// regardless of the order they completed in. Slots of tasks that did not
// complete (or were never added) are empty.
//
// If a task panics, Run panics with a [*TaskPanic].
//
// Run must only be called once.
func (e *Executor[L, R]) Run() []Outcome[R] {
	if e.ran {
		panic("pxasync: executor has already run")
	}
	e.ran = true

	results := make([]Outcome[R], cap(e.slots))
	aborted := false

	for {
		n := 0

		for _, s := range e.slots {
			// Clear before polling: a wake arriving mid-poll must not be lost.
			if s.task.cx.clearReady() {
				if v, ok := e.poll(s).Value(); ok {
					results[s.index] = Outcome[R]{value: v, done: true}
					aborted = aborted || e.bail(v)
					continue
				}
			}
			e.slots[n] = s
			e.contexts[n] = &s.task.cx
			n++
		}

		clear(e.slots[n:])
		clear(e.contexts[n:])
		e.slots = e.slots[:n]
		e.contexts = e.contexts[:n]

		if aborted || n == 0 {
			break
		}

		e.policy.Wait(e.contexts, !e.someReady())
	}

	return results
}

func (e *Executor[L, R]) someReady() bool {
	for _, cx := range e.contexts {
		if cx.IsReady() {
			return true
		}
	}
	return false
}

func (e *Executor[L, R]) poll(s slot[L, R]) (p Poll[R]) {
	var ps panicstack
	if !ps.Try(func() { p = s.task.Poll() }) {
		ps.Repanic(s.index)
	}
	return p
}
