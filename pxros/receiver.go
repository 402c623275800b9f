package pxros

import (
	"errors"
	"fmt"
)

// A Receiver receives messages from one mailbox and events from a fixed
// event set, on behalf of the calling task.
type Receiver struct {
	kernel  Kernel
	mailbox Mailbox
	events  Events
}

// NewReceiver returns a [Receiver] for mbx and events.
func NewReceiver(k Kernel, mbx Mailbox, events Events) Receiver {
	return Receiver{kernel: k, mailbox: mbx, events: events}
}

// Mailbox returns the mailbox r receives from.
func (r Receiver) Mailbox() Mailbox { return r.mailbox }

// Events returns the event set r receives.
func (r Receiver) Events() Events { return r.events }

// Receive blocks until an event of r is signalled or a message arrives.
func (r Receiver) Receive() (Events, *Message, error) {
	events, m, err := r.kernel.ReceiveWithEvents(r.mailbox, r.events)
	if err != nil {
		return NoEvents, nil, err
	}
	if !r.events.Contains(events) {
		panic(fmt.Sprintf("pxros: kernel delivered events %v outside of %v", events, r.events))
	}
	return events, m, nil
}

// TryReceive returns the next message without blocking. It returns nil and
// no error if the mailbox is empty.
func (r Receiver) TryReceive() (*Message, error) {
	m, err := r.kernel.ReceiveNoWait(r.mailbox)
	if errors.Is(err, ErrNoMessage) {
		return nil, nil
	}
	return m, err
}

// ResetEvents consumes the signalled events of r without blocking.
func (r Receiver) ResetEvents() Events {
	return r.kernel.ResetEvents(r.events)
}

// AwaitEvents blocks until an event of r is signalled, and consumes it.
// Messages are not looked at.
func (r Receiver) AwaitEvents() Events {
	return r.kernel.AwaitEvents(r.events)
}

// A Signaller signals a fixed event set to one task.
type Signaller struct {
	kernel Kernel
	task   TaskID
	events Events
}

// NewSignaller returns a [Signaller] of events to task.
func NewSignaller(k Kernel, task TaskID, events Events) Signaller {
	return Signaller{kernel: k, task: task, events: events}
}

// SignallerFor resolves name through ns and returns a [Signaller] of events
// to it. The ticker event paces the lookup; see [NameServer.Query].
func SignallerFor(ns *NameServer, name TaskName, events, ticker Events) (Signaller, error) {
	task, err := ns.Query(name, ticker)
	if err != nil {
		return Signaller{}, err
	}
	return NewSignaller(ns.Kernel, task, events), nil
}

// Task returns the task s signals.
func (s Signaller) Task() TaskID { return s.task }

// Signal signals the events of s.
func (s Signaller) Signal() error {
	return s.kernel.SignalEvents(s.task, s.events)
}
