package utils

// Binary heap with the smallest element (by less) on top.
type Heap[T any] struct {
	items []T
	less  func(a, b T) bool
}

// Heapifies the given items in O(n); the slice is taken over.
func NewHeap[T any](less func(a, b T) bool, items ...T) *Heap[T] {
	h := &Heap[T]{items: items, less: less}
	for i := len(items)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
	return h
}

func (h *Heap[T]) Len() int { return len(h.items) }

func (h *Heap[T]) Peek() T { return h.items[0] }

func (h *Heap[T]) Push(x T) {
	h.items = append(h.items, x)
	h.up(len(h.items) - 1)
}

func (h *Heap[T]) Pop() T {
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items = h.items[:last]
	if last > 0 {
		h.down(0)
	}
	return top
}

// Swaps the top for x; cheaper than Pop then Push.
func (h *Heap[T]) ReplaceTop(x T) {
	h.items[0] = x
	h.down(0)
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap[T]) down(i int) {
	n := len(h.items)
	for {
		smallest := i
		if l := 2*i + 1; l < n && h.less(h.items[l], h.items[smallest]) {
			smallest = l
		}
		if r := 2*i + 2; r < n && h.less(h.items[r], h.items[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// The n largest values with their indexes, largest first; ties keep the smaller index.
// Only a heap of n entries is kept, so this is cheap for small n over large arrays.
func FindTopNInArray(values []float64, n uint32) []Pair[uint32, float64] {
	n = min(n, uint32(len(values)))
	worse := func(a, b Pair[uint32, float64]) bool {
		return a.Second < b.Second || (a.Second == b.Second && a.First > b.First)
	}
	h := NewHeap(worse, make([]Pair[uint32, float64], 0, n)...)
	for i, v := range values {
		p := Pair[uint32, float64]{uint32(i), v}
		if uint32(h.Len()) < n {
			h.Push(p)
		} else if n > 0 && worse(h.Peek(), p) {
			h.ReplaceTop(p)
		}
	}
	top := make([]Pair[uint32, float64], h.Len())
	for i := len(top) - 1; i >= 0; i-- {
		top[i] = h.Pop()
	}
	return top
}
