package pxasync

// A Waker marks a task ready to be polled.
//
// A Waker refers to the [ReadyFlag] of a task storage, which lives for as
// long as the program does. Copying or discarding a Waker has no cost, and
// Wakers of the same task compare equal.
type Waker struct {
	flag *ReadyFlag
}

// Wake marks the task that w refers to as ready.
//
// Wake never blocks, never allocates, and is safe to call from any
// goroutine. Calling it more than once before the task is polled has the
// same effect as calling it once.
func (w Waker) Wake() {
	if w.flag == nil {
		panic("pxasync: zero Waker")
	}
	w.flag.MarkReady()
}

// A Context is the per-task record shared by a task, its [Waker], and the
// scheduling policy of an [Executor].
//
// It pairs the task-local data, whose shape is decided by the policy, with
// the task's [ReadyFlag]. A Context is built once by [TaskStorage.Init] and
// is never copied afterwards.
type Context[L any] struct {
	local L
	flag  ReadyFlag
}

// LocalData returns the task-local data.
//
// The data must only be accessed from within the task's own poll, or by
// the scheduling policy while no task is being polled.
func (cx *Context[L]) LocalData() *L {
	if cx == nil {
		panic("pxasync: task-local data accessed outside an executor")
	}
	return &cx.local
}

// Waker returns a [Waker] for the task.
func (cx *Context[L]) Waker() Waker {
	return Waker{flag: &cx.flag}
}

// MarkReady marks the task as ready to be polled.
func (cx *Context[L]) MarkReady() {
	cx.flag.MarkReady()
}

// IsReady reports whether the task is marked ready.
func (cx *Context[L]) IsReady() bool {
	return cx.flag.IsReady()
}

func (cx *Context[L]) clearReady() bool {
	return cx.flag.ClearReady()
}
