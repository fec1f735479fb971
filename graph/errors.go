package graph

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors. Check with errors.Is; most are returned wrapped with context.
var (
	// Construction of a view failed; nothing was scheduled.
	ErrGraphBuild = errors.New("graph build failed")

	// A label in the filter does not exist in the store schema.
	ErrGraphNotFound = fmt.Errorf("%w: graph not found", ErrGraphBuild)

	// No read snapshot could be opened on the store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Index lookup had no match.
	ErrNotFound = errors.New("not found")

	// The view or the input does not support the requested operation (e.g. in-edges on a forward-only view).
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// An algorithm hit its hard superstep cap before its natural termination.
	ErrConvergenceBudgetExceeded = errors.New("convergence budget exceeded")
)

// Returned by the scheduler when a work function failed (error or panic) on some worker.
// The whole call is aborted; writes made before the failure are not rolled back.
type ConcurrencyAbortError struct {
	Vertex uint32 // The vertex (or index) whose work function failed.
	Err    error
}

func (e *ConcurrencyAbortError) Error() string {
	return "superstep aborted at vertex " + strconv.FormatUint(uint64(e.Vertex), 10) + ": " + e.Err.Error()
}

func (e *ConcurrencyAbortError) Unwrap() error {
	return e.Err
}
