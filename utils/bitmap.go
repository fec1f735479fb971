package utils

import (
	"math/bits"
	"sync/atomic"
)

// Initially inspired from https://github.com/kelindar/bitmap Thank you for using the MIT license!
// Mostly just implementing/changing for the needed use-cases.

// ------------------ Regular Bitmap ------------------

type Bitmap []uint64

// Allocates a bitmap able to hold bits [0, size).
func NewBitmap(size uint32) Bitmap {
	return make(Bitmap, (int(size)+63)>>6)
}

// Zeros all bits in the bitmap.
func (bitmap *Bitmap) Zeroes() {
	for i := 0; i < len(*bitmap); i++ {
		(*bitmap)[i] = 0
	}
}

// Sets exactly the bits [0, size); anything above is cleared.
func (bitmap Bitmap) Ones(size uint32) {
	full := int(size >> 6)
	for i := 0; i < len(bitmap); i++ {
		switch {
		case i < full:
			bitmap[i] = 0xFFFFFFFFFFFFFFFF
		case i == full && size%64 != 0:
			bitmap[i] = (uint64(1) << (size % 64)) - 1
		default:
			bitmap[i] = 0
		}
	}
}

// ------------------ Concurrent access ------------------
// The bitmap must already be sized; these never grow it.

// Sets bit x. Returns true only for the caller that moved the bit from 0 to 1.
func (bitmap Bitmap) AtomicSet(x uint32) bool {
	mask := uint64(1) << (x % 64)
	old := atomic.OrUint64(&bitmap[x>>6], mask)
	return old&mask == 0
}

func (bitmap Bitmap) AtomicHas(x uint32) bool {
	return atomic.LoadUint64(&bitmap[x>>6])&(1<<(x%64)) != 0
}

// Loads a whole word, for iterating set bits while others may still be setting.
func (bitmap Bitmap) AtomicWord(idx int) uint64 {
	return atomic.LoadUint64(&bitmap[idx])
}

// Number of set bits.
func (bitmap Bitmap) Count() (count int) {
	for i := 0; i < len(bitmap); i++ {
		count += bits.OnesCount64(bitmap[i])
	}
	return count
}
