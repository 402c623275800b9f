// Package pxasync is a cooperative, single-threaded executor for a fixed
// set of tasks, built for hosts where tasks must not be created at runtime
// and the scheduler must not allocate.
//
// # Tasks
//
// A task is a [Future] stored in a [TaskStorage]. The storage is declared up
// front and handed to an [Executor] exactly once, by [Executor.Add]. From
// then on it lives for as long as the program does.
//
// An executor polls a task only when the task's [ReadyFlag] is set. Every
// task is marked ready when added, so it is polled at least once. A task
// that returns a pending [Poll] stays suspended until something wakes it:
// either the task itself, through the [Waker] of its [Context], or the
// scheduling policy.
//
// # Scheduling Policies
//
// An [Executor] does not know what tasks wait for. That knowledge belongs to
// a [RawExecutor], the scheduling policy the executor is created with. The
// policy decides the shape of the task-local data each task carries in its
// [Context]; tasks write their interests there, and the policy, when asked
// to wait for more work, reads them back, delivers whatever input arrived,
// and marks the matching tasks ready.
//
// The executor tells the policy whether it may block. If some task is
// already ready, for example because it woke itself during the last pass,
// the policy must only drain pending input and return.
//
// See package pxros for a policy backed by a real-time kernel's events and
// mailboxes.
//
// # Results
//
// [Executor.Run] returns one [Outcome] per slot, in the order tasks were
// added. A run ends when every task completes or, earlier, when a task
// completes with a result that bails (see [WithBail] and [DefaultBail]).
// One task's failure does not wait for other tasks to reach a suspension
// point.
//
// # Panics
//
// Misuse is a programming error and panics: initializing a storage twice,
// adding more tasks than an executor can hold, running an executor twice.
// A panic inside a task makes [Executor.Run] panic with a [*TaskPanic].
package pxasync
