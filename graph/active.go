package graph

import (
	"github.com/ScottSallinen/snapolap/utils"
)

// Concurrent membership bitset over dense vertex ids.
// Add is the only first-writer claim primitive in the engine.
type ActiveSet struct {
	bits utils.Bitmap
	size uint32
}

func NewActiveSet(size uint32) *ActiveSet {
	return &ActiveSet{bits: utils.NewBitmap(size), size: size}
}

// Returns true iff this call moved v from absent to present.
func (a *ActiveSet) Add(v uint32) bool {
	return a.bits.AtomicSet(v)
}

func (a *ActiveSet) IsSet(v uint32) bool {
	return a.bits.AtomicHas(v)
}

// Not safe concurrently with Add; call between supersteps.
func (a *ActiveSet) Clear() {
	a.bits.Zeroes()
}

// Sets every vertex in [0, Size()). Not safe concurrently with Add.
func (a *ActiveSet) Fill() {
	a.bits.Ones(a.size)
}

func (a *ActiveSet) Count() int {
	return a.bits.Count()
}

func (a *ActiveSet) Size() uint32 { return a.size }

// Exchanges the contents of two sets in O(1).
func (a *ActiveSet) Swap(other *ActiveSet) {
	if a.size != other.size {
		panic("ActiveSet.Swap: size mismatch")
	}
	a.bits, other.bits = other.bits, a.bits
}

func (a *ActiveSet) words() int        { return len(a.bits) }
func (a *ActiveSet) word(i int) uint64 { return a.bits.AtomicWord(i) }
