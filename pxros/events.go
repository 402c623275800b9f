package pxros

import (
	"fmt"
	"math/bits"
)

// Events is a set of kernel events, one bit per event.
type Events uint32

// NoEvents is the empty event set.
const NoEvents Events = 0

// AllEvents is the event set with every bit set.
const AllEvents Events = ^Events(0)

// Bits returns the raw bitmask of e.
func (e Events) Bits() uint32 { return uint32(e) }

// IsEmpty reports whether e has no bits set.
func (e Events) IsEmpty() bool { return e == 0 }

// Union returns e ∪ o.
func (e Events) Union(o Events) Events { return e | o }

// Intersect returns e ∩ o.
func (e Events) Intersect(o Events) Events { return e & o }

// Difference returns e with the bits of o removed.
func (e Events) Difference(o Events) Events { return e &^ o }

// Contains reports whether every bit of o is in e.
func (e Events) Contains(o Events) bool { return e&o == o }

// Intersects reports whether e and o share a bit.
func (e Events) Intersects(o Events) bool { return e&o != 0 }

// Len returns the number of bits set in e.
func (e Events) Len() int { return bits.OnesCount32(uint32(e)) }

func (e Events) String() string {
	return fmt.Sprintf("%#b", uint32(e))
}
