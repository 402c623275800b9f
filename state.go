package pxasync

// A State is a value whose changes wake the tasks awaiting it.
//
// State embeds [Signal]: awaiting a State with [Await] completes on its
// next change, and [Until] completes once the value satisfies a condition.
//
// A State must not be shared by more than one [Executor].
type State[T any] struct {
	Signal
	value T
}

// NewState returns a [State] holding v.
func NewState[T any](v T) *State[T] {
	return &State[T]{value: v}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	return s.value
}

// Set replaces the value and wakes the tasks awaiting s.
// Call it from within a task.
func (s *State[T]) Set(v T) {
	s.value = v
	s.Notify()
}

// Update replaces the value with f applied to it, and wakes the tasks
// awaiting s. Call it from within a task.
func (s *State[T]) Update(f func(v T) T) {
	s.Set(f(s.value))
}

// Until returns a [Future] that completes with the value of s as soon as
// cond holds for it, possibly on its first poll.
func Until[L, T any](s *State[T], cond func(T) bool) Future[L, T] {
	if cond == nil {
		panic("pxasync: Until(nil): undefined behavior")
	}
	return PollFunc[L, T](func(cx *Context[L]) Poll[T] {
		if v := s.value; cond(v) {
			return Ready(v)
		}
		s.listen(cx.Waker())
		return Pending[T]()
	})
}
