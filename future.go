package pxasync

// A Future is a suspendable computation polled by an [Executor].
//
// Each call to Poll resumes the computation once. A pending Future must
// arrange for its task to be woken, either by calling [Waker.Wake] itself
// or by declaring interest in the task-local data so that the scheduling
// policy wakes it later; otherwise the task is never polled again.
//
// A Future must not be polled again after it reported ready.
type Future[L, R any] interface {
	Poll(cx *Context[L]) Poll[R]
}

// A PollFunc is a func(cx *Context[L]) Poll[R] that implements [Future].
type PollFunc[L, R any] func(cx *Context[L]) Poll[R]

// Poll implements [Future].
func (f PollFunc[L, R]) Poll(cx *Context[L]) Poll[R] { return f(cx) }

// Done returns a [Future] that is ready with v on first poll.
func Done[L, R any](v R) Future[L, R] {
	return PollFunc[L, R](func(*Context[L]) Poll[R] {
		return Ready(v)
	})
}

// Do returns a [Future] that calls f, and then is ready with its result.
func Do[L, R any](f func() R) Future[L, R] {
	return PollFunc[L, R](func(*Context[L]) Poll[R] {
		return Ready(f())
	})
}

// Never returns a [Future] that never completes.
func Never[L, R any]() Future[L, R] {
	return PollFunc[L, R](func(*Context[L]) Poll[R] {
		return Pending[R]()
	})
}

// Yield returns a [Future] that wakes its own task and suspends once, and
// then is ready.
//
// Awaiting Yield gives other ready tasks a chance to run without waiting
// for any external input.
func Yield[L any]() Future[L, struct{}] {
	yielded := false
	return PollFunc[L, struct{}](func(cx *Context[L]) Poll[struct{}] {
		if yielded {
			return Ready(struct{}{})
		}
		yielded = true
		cx.Waker().Wake()
		return Pending[struct{}]()
	})
}

// Map returns a [Future] that completes with m applied to the result of f.
func Map[L, A, B any](f Future[L, A], m func(A) B) Future[L, B] {
	if m == nil {
		panic("pxasync: Map(nil): undefined behavior")
	}
	return PollFunc[L, B](func(cx *Context[L]) Poll[B] {
		if v, ok := f.Poll(cx).Value(); ok {
			return Ready(m(v))
		}
		return Pending[B]()
	})
}

// Then returns a [Future] that first works on f, then on the Future that
// next returns for the result of f.
//
// When f completes, next is called and its Future is polled immediately
// within the same poll.
func Then[L, A, B any](f Future[L, A], next func(A) Future[L, B]) Future[L, B] {
	if next == nil {
		panic("pxasync: Then(nil): undefined behavior")
	}
	return &then[L, A, B]{first: f, next: next}
}

type then[L, A, B any] struct {
	first  Future[L, A]
	next   func(A) Future[L, B]
	second Future[L, B]
}

func (t *then[L, A, B]) Poll(cx *Context[L]) Poll[B] {
	if t.second == nil {
		v, ok := t.first.Poll(cx).Value()
		if !ok {
			return Pending[B]()
		}
		t.first = nil
		t.second = t.next(v)
		if t.second == nil {
			panic("pxasync: Then: next returned nil Future")
		}
	}
	return t.second.Poll(cx)
}

// Loop returns a [Future] that repeatedly works on the Futures returned by
// body until one of them completes with done set to true.
//
// Each iteration starts within the same poll as the previous one ended.
func Loop[L, R any](body func() Future[L, Step[R]]) Future[L, R] {
	if body == nil {
		panic("pxasync: Loop(nil): undefined behavior")
	}
	var cur Future[L, Step[R]]
	return PollFunc[L, R](func(cx *Context[L]) Poll[R] {
		for {
			if cur == nil {
				cur = body()
			}
			s, ok := cur.Poll(cx).Value()
			if !ok {
				return Pending[R]()
			}
			cur = nil
			if s.done {
				return Ready(s.value)
			}
		}
	})
}

// Step is the result of one [Loop] iteration.
type Step[R any] struct {
	value R
	done  bool
}

// Continue returns a [Step] that continues a [Loop].
func Continue[R any]() Step[R] {
	return Step[R]{}
}

// Break returns a [Step] that ends a [Loop] with v.
func Break[R any](v R) Step[R] {
	return Step[R]{value: v, done: true}
}
