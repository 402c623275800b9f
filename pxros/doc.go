// Package pxros runs [pxasync] tasks on top of a real-time kernel that
// offers per-task event bitmasks and mailboxes.
//
// The heart of the package is [Executor], a [pxasync.RawExecutor] that
// waits on a single kernel receive returning an event set, a message, or
// both, and fans what it received out to the tasks that declared interest
// in their [TaskData]:
//
//   - events are broadcast: every task awaiting a delivered event bit is
//     woken in the same dispatch;
//   - a message goes to the one task awaiting a message, or is dropped
//     (logged and released) when no task awaits one. Only one task may
//     await a message at a time.
//
// Tasks await kernel input with [WaitForEvent], [WaitForMessage] and
// [Ticker.Next]. [Run] wires a list of task storages into an executor and
// runs it to completion.
//
// The kernel itself is reached through the [Kernel] interface, which is
// the calling task's view of the kernel. Package simkernel provides an
// in-process implementation.
package pxros
