package graph

import (
	"fmt"
	"math"
	"strconv"
)

// Unweighted graphs simply have weights of 1.
const DEFAULT_WEIGHT = 1.0

// Basic adjacency entry of a view.
type Edge struct {
	Weight float64 // DEFAULT_WEIGHT if the view is unweighted.
	Didx   uint32  // Dense id of the neighbour.
	Type   uint16  // Index into the view's edge type names.
}

func (e Edge) String() string {
	return "{Didx: " + strconv.FormatUint(uint64(e.Didx), 10) + ", Type: " + strconv.Itoa(int(e.Type)) + ", Weight: " + strconv.FormatFloat(e.Weight, 'g', -1, 64) + "}"
}

// How the weight field of an edge is interpreted during construction.
type WeightKind uint8

const (
	NoWeight    WeightKind = iota // Every edge gets DEFAULT_WEIGHT.
	IntWeight                     // Integral weights; fractional values are rejected.
	FloatWeight                   // Any finite number.
)

func (k WeightKind) String() string {
	switch k {
	case NoWeight:
		return "none"
	case IntWeight:
		return "int"
	case FloatWeight:
		return "float"
	}
	return "WeightKind(" + strconv.Itoa(int(k)) + ")"
}

func ParseWeightKind(s string) (WeightKind, error) {
	switch s {
	case "", "none":
		return NoWeight, nil
	case "int":
		return IntWeight, nil
	case "float":
		return FloatWeight, nil
	}
	return NoWeight, fmt.Errorf("unknown weight kind %q", s)
}

// Reads the weight of an edge from its fields. A missing field gives DEFAULT_WEIGHT.
func (k WeightKind) parse(fields Fields, field string) (float64, error) {
	if k == NoWeight || field == "" {
		return DEFAULT_WEIGHT, nil
	}
	raw, ok := fields[field]
	if !ok {
		return DEFAULT_WEIGHT, nil
	}
	w, err := toFloat(raw)
	if err != nil {
		return 0, fmt.Errorf("weight field %q: %w", field, err)
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("weight field %q: %v is not finite", field, raw)
	}
	if k == IntWeight && w != float64(int64(w)) {
		return 0, fmt.Errorf("weight field %q: %v is not integral", field, raw)
	}
	return w, nil
}

// Numeric conversion for store field values (decoded JSON gives float64, in-memory stores may hold anything numeric).
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(t, 64)
	}
	return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
}
