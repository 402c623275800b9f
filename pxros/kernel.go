package pxros

// TaskID identifies a kernel task.
type TaskID uint32

// Mailbox identifies a kernel mailbox.
type Mailbox uint32

// MessageHandle identifies a kernel message object.
type MessageHandle uint32

// PeriodicHandle identifies a periodic or one-shot timer job.
type PeriodicHandle uint32

// Ticks is a duration in kernel clock ticks.
type Ticks uint32

// TaskName is a symbolic task name, resolved to a [TaskID] through the name
// server (see [NameServer]).
type TaskName uint32

// MessagePool takes message objects back.
type MessagePool interface {
	// ReleaseMessage returns the message object h to the kernel.
	ReleaseMessage(h MessageHandle) error
}

// Kernel is the calling task's view of the real-time kernel.
//
// Calls that wait or consume events act on the events of the calling task.
// Implementations must be safe for use by one goroutine per task.
type Kernel interface {
	MessagePool

	// Self returns the calling task.
	Self() TaskID

	// ReceiveWithEvents blocks until a message arrives in mbx or any of
	// events is signalled, and returns the signalled events, the message,
	// or both. Returned events are consumed.
	ReceiveWithEvents(mbx Mailbox, events Events) (Events, *Message, error)

	// ReceiveNoWait returns the next message of mbx, or [ErrNoMessage].
	ReceiveNoWait(mbx Mailbox) (*Message, error)

	// ResetEvents consumes and returns the signalled events among events,
	// without blocking.
	ResetEvents(events Events) Events

	// AwaitEvents blocks until any of events is signalled, and consumes
	// and returns the signalled ones.
	AwaitEvents(events Events) Events

	// SignalEvents signals events to task.
	SignalEvents(task TaskID, events Events) error

	// TaskMailbox returns the default mailbox of task.
	TaskMailbox(task TaskID) (Mailbox, error)

	// RequestMessage allocates a message with a data area of size bytes,
	// owned by the calling task.
	RequestMessage(size uint32) (*Message, error)

	// SendMessage moves the message h into mbx.
	SendMessage(h MessageHandle, mbx Mailbox) error

	// StartPeriodic starts a job signalling events to the calling task
	// every period.
	StartPeriodic(events Events, period Ticks) (PeriodicHandle, error)

	// StopPeriodic stops and releases the job h.
	StopPeriodic(h PeriodicHandle) error

	// NameQuery resolves name, failing with [ErrNameUndefined] if no task
	// registered it yet.
	NameQuery(name TaskName) (TaskID, error)

	// NameRegister registers task under name.
	NameRegister(name TaskName, task TaskID) error
}
