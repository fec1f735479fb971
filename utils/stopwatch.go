package utils

import "time"

// Wall-clock timer with laps, for run and superstep timings. Not for concurrent use.
type Watch struct {
	start time.Time
	lap   time.Time
}

func (w *Watch) Start() {
	w.start = time.Now()
	w.lap = w.start
}

func (w *Watch) Elapsed() time.Duration {
	return time.Since(w.start)
}

// Time since the previous lap (or Start), and begins the next one.
func (w *Watch) Lap() time.Duration {
	now := time.Now()
	d := now.Sub(w.lap)
	w.lap = now
	return d
}
