package utils

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Hides p from escape analysis, so the pointee is not moved to the heap.
//
//go:nosplit
func Noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}

func asUint64[T ~float64](p *T) *uint64 {
	return (*uint64)(Noescape(unsafe.Pointer(p)))
}

// Reads a float slot that other threads may be writing with AtomicStoreFloat64.
func AtomicLoadFloat64[T ~float64](p *T) T {
	return T(math.Float64frombits(atomic.LoadUint64(asUint64(p))))
}

func AtomicStoreFloat64[T ~float64](p *T, v T) {
	atomic.StoreUint64(asUint64(p), math.Float64bits(float64(v)))
}
