package pxros

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// A Message is a kernel message object: a byte-addressable data area owned
// by one task at a time.
//
// A received Message must be released with [Message.Release] once its data
// is no longer needed. Accessing a released or sent Message fails with
// [ErrIllegalMessage].
type Message struct {
	handle MessageHandle
	sender TaskID
	data   []byte
	pool   MessagePool
	gone   bool
}

// NewMessage wraps a kernel message object.
//
// NewMessage is meant for [Kernel] implementations.
func NewMessage(h MessageHandle, sender TaskID, data []byte, pool MessagePool) *Message {
	return &Message{handle: h, sender: sender, data: data, pool: pool}
}

// Handle returns the kernel handle of m.
func (m *Message) Handle() MessageHandle { return m.handle }

// Sender returns the task that sent m.
func (m *Message) Sender() TaskID { return m.sender }

// Released reports whether m was released or sent.
func (m *Message) Released() bool { return m.gone }

// Data returns the data area of m.
func (m *Message) Data() ([]byte, error) {
	if m.gone {
		return nil, ErrIllegalMessage
	}
	return m.data, nil
}

// Size returns the size of the data area of m.
func (m *Message) Size() (int, error) {
	if m.gone {
		return 0, ErrIllegalMessage
	}
	return len(m.data), nil
}

// Send moves m into mbx. m must not be used afterwards.
func (m *Message) Send(k Kernel, mbx Mailbox) error {
	if m.gone {
		return ErrIllegalMessage
	}
	if err := k.SendMessage(m.handle, mbx); err != nil {
		return err
	}
	m.gone = true
	return nil
}

// Release returns m to the kernel.
func (m *Message) Release() error {
	if m.gone {
		return ErrIllegalMessage
	}
	if err := m.pool.ReleaseMessage(m.handle); err != nil {
		return err
	}
	m.gone = true
	return nil
}

func (m *Message) String() string {
	return fmt.Sprintf("message %d (sender: %d, size: %d)", m.handle, m.sender, len(m.data))
}

// DecodeMessage decodes the msgpack-encoded data of m into v.
func DecodeMessage(m *Message, v any) error {
	data, err := m.Data()
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("pxros: decoding %v: %w", m, err)
	}
	return nil
}

// A MailSender sends messages to the mailbox of a task.
type MailSender struct {
	kernel  Kernel
	mailbox Mailbox
}

// NewMailSender returns a [MailSender] sending to the default mailbox of
// task.
func NewMailSender(k Kernel, task TaskID) (*MailSender, error) {
	mbx, err := k.TaskMailbox(task)
	if err != nil {
		return nil, err
	}
	return &MailSender{kernel: k, mailbox: mbx}, nil
}

// MailSenderFor resolves name through the name server and returns
// a [MailSender] for it. The ticker event paces the lookup; see
// [NameServer.Query].
func MailSenderFor(ns *NameServer, name TaskName, ticker Events) (*MailSender, error) {
	task, err := ns.Query(name, ticker)
	if err != nil {
		return nil, err
	}
	return NewMailSender(ns.Kernel, task)
}

// Mailbox returns the destination mailbox of s.
func (s *MailSender) Mailbox() Mailbox { return s.mailbox }

// SendBytes copies src into a new message and sends it.
func (s *MailSender) SendBytes(src []byte) error {
	size, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return fmt.Errorf("pxros: message too large: %w", err)
	}
	m, err := s.kernel.RequestMessage(size)
	if err != nil {
		return err
	}
	data, err := m.Data()
	if err != nil {
		return err
	}
	copy(data, src)
	if err := m.Send(s.kernel, s.mailbox); err != nil {
		return errors.Join(err, m.Release())
	}
	return nil
}

// Send encodes v with msgpack and sends it.
func (s *MailSender) Send(v any) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("pxros: encoding message: %w", err)
	}
	return s.SendBytes(b)
}
