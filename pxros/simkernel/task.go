package simkernel

import "github.com/b97tsk/pxasync/pxros"

// A Task is one task's view of a [Kernel]. It implements [pxros.Kernel].
//
// Blocking calls block the calling goroutine; a Task must only be used by
// the goroutine playing that task.
type Task struct {
	kernel  *Kernel
	id      pxros.TaskID
	mailbox pxros.Mailbox
}

var _ pxros.Kernel = (*Task)(nil)

// Kernel returns the kernel t belongs to.
func (t *Task) Kernel() *Kernel { return t.kernel }

// Mailbox returns the default mailbox of t.
func (t *Task) Mailbox() pxros.Mailbox { return t.mailbox }

func (t *Task) Self() pxros.TaskID { return t.id }

func (t *Task) ReceiveWithEvents(mbx pxros.Mailbox, events pxros.Events) (pxros.Events, *pxros.Message, error) {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	mb := k.mailboxes[mbx]
	if mb == nil {
		return pxros.NoEvents, nil, pxros.ErrIllegalMailbox
	}
	self := k.tasks[t.id]

	for {
		got := self.events.Intersect(events)
		if !got.IsEmpty() || len(mb.queue) != 0 {
			self.events = self.events.Difference(got)
			return got, k.popLocked(mb, t), nil
		}
		k.cond.Wait()
	}
}

func (t *Task) ReceiveNoWait(mbx pxros.Mailbox) (*pxros.Message, error) {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	mb := k.mailboxes[mbx]
	if mb == nil {
		return nil, pxros.ErrIllegalMailbox
	}
	if m := k.popLocked(mb, t); m != nil {
		return m, nil
	}
	return nil, pxros.ErrNoMessage
}

func (t *Task) ResetEvents(events pxros.Events) pxros.Events {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	self := k.tasks[t.id]
	got := self.events.Intersect(events)
	self.events = self.events.Difference(got)
	return got
}

func (t *Task) AwaitEvents(events pxros.Events) pxros.Events {
	if events.IsEmpty() {
		panic("simkernel: waiting for no events")
	}

	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	self := k.tasks[t.id]
	for {
		if got := self.events.Intersect(events); !got.IsEmpty() {
			self.events = self.events.Difference(got)
			return got
		}
		k.cond.Wait()
	}
}

func (t *Task) SignalEvents(task pxros.TaskID, events pxros.Events) error {
	return t.kernel.signal(task, events)
}

func (t *Task) TaskMailbox(task pxros.TaskID) (pxros.Mailbox, error) {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	if s := k.tasks[task]; s != nil {
		return s.mailbox, nil
	}
	return 0, pxros.ErrIllegalTask
}

func (t *Task) RequestMessage(size uint32) (*pxros.Message, error) {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.messages) >= k.limit {
		return nil, pxros.ErrNoObject
	}
	k.lastMessage++
	h := k.lastMessage
	m := &message{data: make([]byte, size), sender: t.id}
	k.messages[h] = m
	return pxros.NewMessage(h, t.id, m.data, t), nil
}

func (t *Task) SendMessage(h pxros.MessageHandle, mbx pxros.Mailbox) error {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	m := k.messages[h]
	if m == nil {
		return pxros.ErrIllegalMessage
	}
	mb := k.mailboxes[mbx]
	if mb == nil {
		return pxros.ErrIllegalMailbox
	}
	m.sender = t.id
	mb.queue = append(mb.queue, h)
	k.cond.Broadcast()
	return nil
}

func (t *Task) ReleaseMessage(h pxros.MessageHandle) error {
	return t.kernel.release(h)
}

func (t *Task) StartPeriodic(events pxros.Events, period pxros.Ticks) (pxros.PeriodicHandle, error) {
	return t.kernel.startPeriodic(t.id, events, period)
}

func (t *Task) StopPeriodic(h pxros.PeriodicHandle) error {
	return t.kernel.stopPeriodic(h)
}

func (t *Task) NameQuery(name pxros.TaskName) (pxros.TaskID, error) {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	if id, ok := k.names[name]; ok {
		return id, nil
	}
	return 0, pxros.ErrNameUndefined
}

func (t *Task) NameRegister(name pxros.TaskName, task pxros.TaskID) error {
	k := t.kernel
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.tasks[task] == nil {
		return pxros.ErrIllegalTask
	}
	if _, ok := k.names[name]; ok {
		return pxros.ErrNameDefined
	}
	k.names[name] = task
	return nil
}
