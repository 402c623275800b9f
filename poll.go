package pxasync

// Poll is the outcome of polling a [Future] once: either still pending, or
// ready with a value.
type Poll[R any] struct {
	value R
	ready bool
}

// Ready returns a [Poll] that is ready with v.
func Ready[R any](v R) Poll[R] {
	return Poll[R]{value: v, ready: true}
}

// Pending returns a [Poll] that is still pending.
func Pending[R any]() Poll[R] {
	return Poll[R]{}
}

// IsReady reports whether p is ready.
func (p Poll[R]) IsReady() bool {
	return p.ready
}

// IsPending reports whether p is still pending.
func (p Poll[R]) IsPending() bool {
	return !p.ready
}

// Value returns the value of p, and whether p is ready.
func (p Poll[R]) Value() (R, bool) {
	return p.value, p.ready
}

// Outcome is one slot of the result slice returned by [Executor.Run].
//
// A slot is empty when its task did not complete, which only happens if
// the run was aborted early.
type Outcome[R any] struct {
	value R
	done  bool
}

// Get returns the value of o, and whether the task completed.
func (o Outcome[R]) Get() (R, bool) {
	return o.value, o.done
}

// Done reports whether the task completed.
func (o Outcome[R]) Done() bool {
	return o.done
}

// Result is a conventional fallible task result: a value or an error.
//
// A Result with a non-nil Err aborts a run (see [Executor.Run]).
type Result[T any] struct {
	Value T
	Err   error
}

// Ok returns a successful [Result].
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Err returns a failed [Result].
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("pxasync: Err called with nil error")
	}
	return Result[T]{Err: err}
}

// Bail reports whether r is an error.
func (r Result[T]) Bail() bool {
	return r.Err != nil
}
