package pxasync

import "sync/atomic"

// A ReadyFlag is a single-bit indicator telling an [Executor] that a task
// should be polled.
//
// The flag is the only per-task value written from more than one place:
// wakers set it, the executor clears it. It is safe for concurrent use.
type ReadyFlag struct {
	v atomic.Uint32
}

// MarkReady sets the flag.
func (f *ReadyFlag) MarkReady() {
	f.v.Store(1)
}

// IsReady reports whether the flag is set.
func (f *ReadyFlag) IsReady() bool {
	return f.v.Load() == 1
}

// ClearReady clears the flag and reports whether it was set.
func (f *ReadyFlag) ClearReady() bool {
	return f.v.Swap(0) == 1
}
