package pxasync

// A TaskStorage holds everything one task needs for its whole life: the
// suspended computation, the [Context] its [Waker] refers to, and a guard
// that makes sure it is initialized only once.
//
// A TaskStorage is meant to be declared up front, typically as a package
// level variable, and handed to [Executor.Add] exactly once. It is never
// torn down; its address must not change after Init, since wakers refer to
// it.
type TaskStorage[L, R any] struct {
	future      Future[L, R]
	cx          Context[L]
	initialized bool
}

// NewTaskStorage creates an uninitialized [TaskStorage] for f.
func NewTaskStorage[L, R any](f Future[L, R]) *TaskStorage[L, R] {
	if f == nil {
		panic("pxasync: nil Future")
	}
	return &TaskStorage[L, R]{future: f}
}

// Init binds t to its task-local data.
//
// Init panics if called more than once.
func (t *TaskStorage[L, R]) Init(local L) *TaskStorage[L, R] {
	if t.initialized {
		panic("pxasync: task storage can only be initialized once")
	}
	t.initialized = true
	t.cx.local = local
	return t
}

// Initialized reports whether Init has been called.
func (t *TaskStorage[L, R]) Initialized() bool {
	return t.initialized
}

// Poll resumes the computation once.
func (t *TaskStorage[L, R]) Poll() Poll[R] {
	return t.future.Poll(t.WakerContext())
}

// LocalData returns the task-local data.
//
// The caller must make sure the task is not being polled at the same time.
func (t *TaskStorage[L, R]) LocalData() *L {
	return t.WakerContext().LocalData()
}

// WakerContext returns the [Context] shared with the task's wakers.
func (t *TaskStorage[L, R]) WakerContext() *Context[L] {
	if !t.initialized {
		panic("pxasync: task storage used before initialization")
	}
	return &t.cx
}
