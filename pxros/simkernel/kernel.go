// Package simkernel is an in-process stand-in for the real-time kernel
// behind [pxros.Kernel].
//
// Tasks are goroutines; each one talks to the kernel through its own
// [*Task]. Events latch per task until consumed, mailboxes queue messages
// in arrival order, and message objects come from a bounded pool and stay
// accounted for until released.
package simkernel

import (
	"sync"
	"time"

	"github.com/b97tsk/pxasync/pxros"
)

// DefaultMessageLimit is the default size of the message pool.
const DefaultMessageLimit = 64

// A Kernel is a simulated kernel. Its methods are safe for concurrent use.
type Kernel struct {
	mu   sync.Mutex
	cond sync.Cond

	tick  time.Duration
	limit int

	tasks     map[pxros.TaskID]*task
	mailboxes map[pxros.Mailbox]*mailbox
	messages  map[pxros.MessageHandle]*message
	periodics map[pxros.PeriodicHandle]*periodic
	names     map[pxros.TaskName]pxros.TaskID

	lastTask     pxros.TaskID
	lastMailbox  pxros.Mailbox
	lastMessage  pxros.MessageHandle
	lastPeriodic pxros.PeriodicHandle
}

type task struct {
	events  pxros.Events
	mailbox pxros.Mailbox
}

type mailbox struct {
	queue []pxros.MessageHandle
}

type message struct {
	data   []byte
	sender pxros.TaskID
}

type periodic struct {
	stop chan struct{}
	done chan struct{}
}

// Option configures a [Kernel].
type Option func(*Kernel)

// WithTick sets the wall-clock duration of one kernel tick.
// The default is [pxros.TickLength].
func WithTick(d time.Duration) Option {
	return func(k *Kernel) {
		k.tick = d
	}
}

// WithMessageLimit sets the number of message objects that may exist at
// once. The default is [DefaultMessageLimit].
func WithMessageLimit(n int) Option {
	return func(k *Kernel) {
		k.limit = n
	}
}

// New creates a [Kernel] without tasks.
func New(opts ...Option) *Kernel {
	k := &Kernel{
		tick:      pxros.TickLength,
		limit:     DefaultMessageLimit,
		tasks:     make(map[pxros.TaskID]*task),
		mailboxes: make(map[pxros.Mailbox]*mailbox),
		messages:  make(map[pxros.MessageHandle]*message),
		periodics: make(map[pxros.PeriodicHandle]*periodic),
		names:     make(map[pxros.TaskName]pxros.TaskID),
	}
	k.cond.L = &k.mu
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Spawn creates a task with its own default mailbox, and returns its view
// of k.
func (k *Kernel) Spawn() *Task {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.lastTask++
	k.lastMailbox++
	id, mbx := k.lastTask, k.lastMailbox
	k.tasks[id] = &task{mailbox: mbx}
	k.mailboxes[mbx] = &mailbox{}
	return &Task{kernel: k, id: id, mailbox: mbx}
}

// Outstanding returns the number of message objects not released yet.
func (k *Kernel) Outstanding() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.messages)
}

// Pending returns the events latched for task and not consumed yet.
func (k *Kernel) Pending(id pxros.TaskID) pxros.Events {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t := k.tasks[id]; t != nil {
		return t.events
	}
	return pxros.NoEvents
}

// Shutdown stops every periodic job.
func (k *Kernel) Shutdown() {
	k.mu.Lock()
	jobs := k.periodics
	k.periodics = make(map[pxros.PeriodicHandle]*periodic)
	k.mu.Unlock()

	for _, p := range jobs {
		close(p.stop)
		<-p.done
	}
}

func (k *Kernel) signal(id pxros.TaskID, events pxros.Events) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	t := k.tasks[id]
	if t == nil {
		return pxros.ErrIllegalTask
	}
	k.latchLocked(t, events)
	return nil
}

// latchLocked adds events to the latched events of t. k.mu must be held.
func (k *Kernel) latchLocked(t *task, events pxros.Events) {
	t.events = t.events.Union(events)
	k.cond.Broadcast()
}

func (k *Kernel) startPeriodic(id pxros.TaskID, events pxros.Events, period pxros.Ticks) (pxros.PeriodicHandle, error) {
	if events.IsEmpty() {
		return 0, pxros.ErrIllegalEvents
	}
	if period == 0 {
		return 0, pxros.ErrIllegalPeriodic
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	t := k.tasks[id]
	if t == nil {
		return 0, pxros.ErrIllegalTask
	}

	k.lastPeriodic++
	h := k.lastPeriodic
	p := &periodic{stop: make(chan struct{}), done: make(chan struct{})}
	k.periodics[h] = p

	go func() {
		defer close(p.done)

		ticker := time.NewTicker(time.Duration(period) * k.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// Tasks are never removed, so t stays valid.
				k.mu.Lock()
				k.latchLocked(t, events)
				k.mu.Unlock()
			case <-p.stop:
				return
			}
		}
	}()

	return h, nil
}

func (k *Kernel) stopPeriodic(h pxros.PeriodicHandle) error {
	k.mu.Lock()
	p := k.periodics[h]
	delete(k.periodics, h)
	k.mu.Unlock()

	if p == nil {
		return pxros.ErrIllegalPeriodic
	}
	close(p.stop)
	<-p.done
	return nil
}

// popLocked removes the first message of mbx. k.mu must be held.
func (k *Kernel) popLocked(mb *mailbox, pool pxros.MessagePool) *pxros.Message {
	if len(mb.queue) == 0 {
		return nil
	}
	h := mb.queue[0]
	mb.queue[0] = 0
	mb.queue = mb.queue[1:]
	m := k.messages[h]
	return pxros.NewMessage(h, m.sender, m.data, pool)
}

func (k *Kernel) release(h pxros.MessageHandle) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.messages[h] == nil {
		return pxros.ErrIllegalMessage
	}
	delete(k.messages, h)
	k.cond.Broadcast()
	return nil
}
