package graph

import "sync"

// One mutex per vertex. Hold for a single slot's check-then-write, never across
// a scheduler barrier, and never hold two at once.
type VertexLockTable struct {
	locks []sync.Mutex
}

func NewVertexLockTable(n uint32) *VertexLockTable {
	return &VertexLockTable{locks: make([]sync.Mutex, n)}
}

func (t *VertexLockTable) Acquire(v uint32) { t.locks[v].Lock() }
func (t *VertexLockTable) Release(v uint32) { t.locks[v].Unlock() }
