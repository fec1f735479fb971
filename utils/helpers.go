package utils

import (
	"math"
	"math/rand"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

type Number interface {
	constraints.Integer | constraints.Float
}

type Pair[F any, S any] struct {
	First  F
	Second S
}

// Approximate float comparison. The tolerance defaults to 0.001.
func FloatEquals(a float64, b float64, tolerance ...float64) bool {
	tol := 0.001
	if len(tolerance) > 0 {
		tol = tolerance[0]
	}
	return math.Abs(a-b) < tol
}

func Sum[T Number](values []T) (sum T) {
	for _, v := range values {
		sum += v
	}
	return sum
}

// Middle value; the mean of the two middle values for an even count. Zero when empty.
func Median[T Number](values []T) T {
	if len(values) == 0 {
		return 0
	}
	s := slices.Clone(values)
	slices.Sort(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m]
	}
	return s[m-1] + (s[m]-s[m-1])/2
}

// Nearest-rank percentile (0 to 100) of the values. Zero when empty.
func Percentile[T Number](values []T, p float64) T {
	if len(values) == 0 {
		return 0
	}
	s := slices.Clone(values)
	slices.Sort(s)
	idx := int(math.Round(p / 100 * float64(len(s)-1)))
	return s[max(0, min(idx, len(s)-1))]
}

// Fisher-Yates, driven by the given source so tests can reproduce it.
func Shuffle[T any](values []T, rng *rand.Rand) {
	for i := len(values) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		values[i], values[j] = values[j], values[i]
	}
}

// Distribution of |a[i] - b[i]| between two per-vertex results of equal length.
type L1Diff struct {
	Mean   float64
	Median float64
	P95    float64
	Max    float64
}

func ResultCompare[T Number](a []T, b []T) (d L1Diff) {
	if len(a) == 0 {
		return d
	}
	diffs := make([]float64, len(a))
	for i := range a {
		diffs[i] = math.Abs(float64(b[i]) - float64(a[i]))
		d.Mean += diffs[i]
		d.Max = max(d.Max, diffs[i])
	}
	d.Mean /= float64(len(a))
	d.Median = Median(diffs)
	d.P95 = Percentile(diffs, 95)
	return d
}
