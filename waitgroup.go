package pxasync

// A WaitGroup is a [Signal] with a counter.
//
// Calling the Add or Done method of a WaitGroup, from within a task,
// updates the counter and, when the counter becomes zero, wakes any task
// that is awaiting the WaitGroup.
//
// A WaitGroup must not be shared by more than one [Executor].
type WaitGroup struct {
	Signal
	n int
}

// Add adds delta, which may be negative, to the [WaitGroup] counter.
// If the [WaitGroup] counter becomes zero, Add wakes any task that is
// awaiting wg.
// If the [WaitGroup] counter is negative, Add panics.
func (wg *WaitGroup) Add(delta int) {
	if wg.n >= 0 {
		wg.n += delta
	}
	if wg.n < 0 {
		panic("pxasync(WaitGroup): negative counter")
	}
	if wg.n == 0 && delta != 0 {
		wg.Notify()
	}
}

// Done decrements the [WaitGroup] counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Count returns the current value of the counter.
func (wg *WaitGroup) Count() int {
	return wg.n
}

// WaitFor returns a [Future] that completes once the [WaitGroup] counter is
// zero.
func WaitFor[L any](wg *WaitGroup) Future[L, struct{}] {
	return PollFunc[L, struct{}](func(cx *Context[L]) Poll[struct{}] {
		if wg.n == 0 {
			return Ready(struct{}{})
		}
		wg.listen(cx.Waker())
		return Pending[struct{}]()
	})
}
