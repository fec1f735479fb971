package sampling

import "math/rand"

// Walker's alias method: O(n) construction (Vose), O(1) draws.
type AliasTable struct {
	accept []float64
	alias  []uint32
}

// Weights need not be normalized. Negative weights count as zero.
// All-zero (or no) weights give an empty table.
func NewAliasTable(weights []float64) *AliasTable {
	n := len(weights)
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if n == 0 || total == 0 {
		return &AliasTable{}
	}
	t := &AliasTable{accept: make([]float64, n), alias: make([]uint32, n)}
	scaled := make([]float64, n)
	small := make([]uint32, 0, n)
	large := make([]uint32, 0, n)
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
			small = append(small, uint32(i))
		} else {
			large = append(large, uint32(i))
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s, l := small[len(small)-1], large[len(large)-1]
		small = small[:len(small)-1]
		t.accept[s] = scaled[s]
		t.alias[s] = l
		scaled[l] -= 1 - scaled[s]
		if scaled[l] < 1 {
			large = large[:len(large)-1]
			small = append(small, l)
		}
	}
	// Leftovers are 1 up to rounding.
	for _, i := range large {
		t.accept[i] = 1
		t.alias[i] = i
	}
	for _, i := range small {
		t.accept[i] = 1
		t.alias[i] = i
	}
	return t
}

func (t *AliasTable) Len() int { return len(t.accept) }

// An index drawn with probability proportional to its weight. The table must not be empty.
func (t *AliasTable) Sample(rng *rand.Rand) uint32 {
	i := rng.Intn(len(t.accept))
	if rng.Float64() < t.accept[i] {
		return uint32(i)
	}
	return t.alias[i]
}
