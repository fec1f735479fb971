package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// An external identifier of a vertex: the value of one of its (indexed) fields.
type IndexKey struct {
	Label string
	Field string
	Value any
}

func (k IndexKey) String() string { return fmt.Sprintf("%s.%s=%v", k.Label, k.Field, k.Value) }

// Parses "label.field=value". The value stays a string; stores match values by their
// printed form, so "42" finds a field holding the number 42.
func ParseIndexKey(s string) (IndexKey, error) {
	lhs, value, ok := strings.Cut(s, "=")
	if !ok {
		return IndexKey{}, fmt.Errorf("index key %q: want label.field=value", s)
	}
	label, field, ok := strings.Cut(lhs, ".")
	if !ok || label == "" || field == "" {
		return IndexKey{}, fmt.Errorf("index key %q: want label.field=value", s)
	}
	return IndexKey{Label: label, Field: field, Value: value}, nil
}

// Resolves keys to raw ids through the store's index, all within one snapshot.
// found[i] is false when keys[i] matches no vertex; err is only set when the store fails.
func Resolve(ctx context.Context, s Store, keys ...IndexKey) (ids []RawID, found []bool, err error) {
	snap, err := s.OpenReadSnapshot(ctx, LabelFilter{})
	if err != nil {
		return nil, nil, err
	}
	defer snap.Close()

	ids = make([]RawID, len(keys))
	found = make([]bool, len(keys))
	for i, k := range keys {
		id, err := snap.LookupByIndex(k.Label, k.Field, k.Value)
		switch {
		case err == nil:
			ids[i], found[i] = id, true
		case !errors.Is(err, ErrNotFound):
			return nil, nil, fmt.Errorf("resolving %v: %w", k, err)
		}
	}
	return ids, found, nil
}
