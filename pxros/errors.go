package pxros

// Error is a kernel error code.
type Error uint16

const (
	ErrIllegalTask     Error = iota + 1 // no such task
	ErrIllegalMailbox                   // no such mailbox
	ErrIllegalMessage                   // no such message, or message already released
	ErrNoMessage                        // mailbox is empty
	ErrNoObject                         // out of kernel objects
	ErrIllegalPeriodic                  // no such periodic job
	ErrIllegalEvents                    // empty or unsupported event set
	ErrNameUndefined                    // name not registered
	ErrNameDefined                      // name already registered
)

var errorText = [...]string{
	ErrIllegalTask:     "illegal task",
	ErrIllegalMailbox:  "illegal mailbox",
	ErrIllegalMessage:  "illegal message",
	ErrNoMessage:       "no message",
	ErrNoObject:        "no object available",
	ErrIllegalPeriodic: "illegal periodic job",
	ErrIllegalEvents:   "illegal events",
	ErrNameUndefined:   "name undefined",
	ErrNameDefined:     "name already defined",
}

func (e Error) Error() string {
	if int(e) < len(errorText) && errorText[e] != "" {
		return "pxros: " + errorText[e]
	}
	return "pxros: unknown error"
}
