package graph

// Per-vertex property storage indexed by dense vertex id. Concurrent reads and writes
// of distinct slots are fine; same-slot writes need the vertex lock (or atomics via Ptr).
type ParallelArray[T any] struct {
	data []T
}

func NewParallelArray[T any](n uint32) *ParallelArray[T] {
	return &ParallelArray[T]{data: make([]T, n)}
}

func NewParallelArrayFilled[T any](n uint32, value T) *ParallelArray[T] {
	pa := NewParallelArray[T](n)
	pa.Fill(value)
	return pa
}

func (pa *ParallelArray[T]) Len() uint32 { return uint32(len(pa.data)) }

func (pa *ParallelArray[T]) Get(v uint32) T { return pa.data[v] }

func (pa *ParallelArray[T]) Set(v uint32, value T) { pa.data[v] = value }

// For atomic access to a slot.
func (pa *ParallelArray[T]) Ptr(v uint32) *T { return &pa.data[v] }

func (pa *ParallelArray[T]) Fill(value T) {
	for i := range pa.data {
		pa.data[i] = value
	}
}

// The backing slice. Writes through it are writes to the array.
func (pa *ParallelArray[T]) Slice() []T { return pa.data }

// Exchanges the contents of two arrays in O(1). Panics on a length mismatch.
func (pa *ParallelArray[T]) Swap(other *ParallelArray[T]) {
	if len(pa.data) != len(other.data) {
		panic("ParallelArray.Swap: length mismatch")
	}
	pa.data, other.data = other.data, pa.data
}
