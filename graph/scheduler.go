package graph

import (
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Fixed-size worker pool for supersteps. Each call to ProcessRange or ProcessActive
// is one barrier: it returns only once every worker has finished.
type Scheduler struct {
	threads uint32
}

// Zero threads means one per CPU.
func NewScheduler(threads uint32) *Scheduler {
	if threads == 0 {
		threads = uint32(runtime.NumCPU())
	}
	return &Scheduler{threads: threads}
}

func (s *Scheduler) Threads() uint32 { return s.threads }

// Associative combination of per-vertex results. Identity is the result of an empty range.
type Reducer[R any] struct {
	Identity R
	Combine  func(a, b R) R
}

var (
	SumInt    = Reducer[int]{Identity: 0, Combine: func(a, b int) int { return a + b }}
	SumUint64 = Reducer[uint64]{Identity: 0, Combine: func(a, b uint64) uint64 { return a + b }}
	SumFloat  = Reducer[float64]{Identity: 0, Combine: func(a, b float64) float64 { return a + b }}
	MaxFloat  = Reducer[float64]{Identity: math.Inf(-1), Combine: math.Max}
	Any       = Reducer[bool]{Identity: false, Combine: func(a, b bool) bool { return a || b }}
	Discard   = Reducer[struct{}]{Combine: func(struct{}, struct{}) struct{} { return struct{}{} }}
)

// Splits [lo, hi) into one contiguous chunk per worker (the last takes the remainder)
// and calls work once per vertex. Results are combined after the barrier, in chunk order.
// The first error or panic from work aborts the call with a *ConcurrencyAbortError;
// writes already made by other workers are not undone.
func ProcessRange[R any](s *Scheduler, lo, hi uint32, work func(v uint32) (R, error), reducer Reducer[R]) (R, error) {
	if hi <= lo {
		return reducer.Identity, nil
	}
	n := hi - lo
	workers := s.threads
	if workers > n {
		workers = n
	}
	chunk := n / workers
	partials := make([]R, workers)
	visits := make([]uint64, workers)
	var stop atomic.Bool

	var eg errgroup.Group
	for t := uint32(0); t < workers; t++ {
		start := lo + t*chunk
		end := start + chunk
		if t == workers-1 {
			end = hi
		}
		eg.Go(func() (err error) {
			acc := reducer.Identity
			v := start
			defer func() {
				if r := recover(); r != nil {
					stop.Store(true)
					err = &ConcurrencyAbortError{Vertex: v, Err: panicError(r)}
				}
				visits[t] = uint64(v - start)
			}()
			for ; v < end; v++ {
				if stop.Load() {
					return nil
				}
				res, werr := work(v)
				if werr != nil {
					stop.Store(true)
					return &ConcurrencyAbortError{Vertex: v, Err: werr}
				}
				acc = reducer.Combine(acc, res)
			}
			partials[t] = acc
			return nil
		})
	}
	err := eg.Wait()
	recordSuperstep(visits)
	if err != nil {
		return reducer.Identity, err
	}
	return reduceAll(reducer, partials), nil
}

// Like ProcessRange, but only over the members of active. Chunks are aligned to
// whole bitset words. The set must not be modified during the call; activations for
// the next superstep go to a different set.
func ProcessActive[R any](s *Scheduler, active *ActiveSet, work func(v uint32) (R, error), reducer Reducer[R]) (R, error) {
	numWords := uint32(active.words())
	if numWords == 0 {
		return reducer.Identity, nil
	}
	workers := s.threads
	if workers > numWords {
		workers = numWords
	}
	chunk := numWords / workers
	partials := make([]R, workers)
	visits := make([]uint64, workers)
	var stop atomic.Bool

	var eg errgroup.Group
	for t := uint32(0); t < workers; t++ {
		startWord := t * chunk
		endWord := startWord + chunk
		if t == workers-1 {
			endWord = numWords
		}
		eg.Go(func() (err error) {
			acc := reducer.Identity
			v := uint32(0)
			count := uint64(0)
			defer func() {
				if r := recover(); r != nil {
					stop.Store(true)
					err = &ConcurrencyAbortError{Vertex: v, Err: panicError(r)}
				}
				visits[t] = count
			}()
			for w := startWord; w < endWord; w++ {
				if stop.Load() {
					return nil
				}
				word := active.word(int(w))
				for word != 0 {
					v = w<<6 + uint32(bits.TrailingZeros64(word))
					word &= word - 1
					res, werr := work(v)
					count++
					if werr != nil {
						stop.Store(true)
						return &ConcurrencyAbortError{Vertex: v, Err: werr}
					}
					acc = reducer.Combine(acc, res)
				}
			}
			partials[t] = acc
			return nil
		})
	}
	err := eg.Wait()
	recordSuperstep(visits)
	if err != nil {
		return reducer.Identity, err
	}
	return reduceAll(reducer, partials), nil
}

func reduceAll[R any](reducer Reducer[R], partials []R) R {
	acc := reducer.Identity
	for _, p := range partials {
		acc = reducer.Combine(acc, p)
	}
	return acc
}

// Keeps error panics (e.g. a misused view) matchable with errors.Is.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
