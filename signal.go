package pxasync

import "slices"

// Event is the interface of any type that tasks can await with [Await].
//
// The following types implement Event: [Signal], [State] and [WaitGroup].
// Any type that embeds [Signal] also implements Event.
type Event interface {
	listen(w Waker) uint64
	generation() uint64
}

// Signal is a type that implements [Event].
//
// Calling the Notify method of a Signal, from within a task, wakes any task
// that is awaiting the Signal. Woken tasks are polled in the same pass if
// they come after the notifier in the executor, or in the next pass
// otherwise; the executor does not block in between.
//
// A Signal keeps one slot per distinct waiting task, reused after every
// Notify. Only growing past the largest number of waiters seen so far
// allocates; call Grow up front to avoid even that.
//
// A Signal must not be shared by more than one [Executor].
type Signal struct {
	gen     uint64
	waiters []Waker
}

// Grow makes room for n waiting tasks.
func (s *Signal) Grow(n int) {
	s.waiters = slices.Grow(s.waiters, n)
}

func (s *Signal) listen(w Waker) uint64 {
	if !slices.Contains(s.waiters, w) {
		s.waiters = append(s.waiters, w)
	}
	return s.gen
}

func (s *Signal) generation() uint64 {
	return s.gen
}

// Notify wakes any task that is awaiting s.
//
// One should only call this method from within a task.
func (s *Signal) Notify() {
	s.gen++
	for _, w := range s.waiters {
		w.Wake()
	}
	clear(s.waiters)
	s.waiters = s.waiters[:0]
}

// Await returns a [Future] that completes the first time ev notifies after
// the Future is first polled.
func Await[L any](ev Event) Future[L, struct{}] {
	var (
		gen     uint64
		started bool
	)
	return PollFunc[L, struct{}](func(cx *Context[L]) Poll[struct{}] {
		if started && ev.generation() != gen {
			return Ready(struct{}{})
		}
		g := ev.listen(cx.Waker())
		if !started {
			gen, started = g, true
		}
		return Pending[struct{}]()
	})
}
