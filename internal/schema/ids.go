package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidRelation is returned for relation values that cannot be turned
// into identifiers for the association's nature.
var ErrInvalidRelation = errors.New("invalid relation value")

// NormalizeID converts a single related reference into an identifier.
// Accepted: positive integral numbers, numeric strings, and objects carrying
// an "id" (or "_id") key.
func NormalizeID(v any) (uint, error) {
	switch t := v.(type) {
	case uint:
		if t == 0 {
			break
		}
		return t, nil
	case uint64:
		if t == 0 {
			break
		}
		return uint(t), nil
	case int:
		if t <= 0 {
			break
		}
		return uint(t), nil
	case int64:
		if t <= 0 {
			break
		}
		return uint(t), nil
	case float64:
		if t < 1 || t != math.Trunc(t) || math.IsInf(t, 0) {
			break
		}
		return uint(t), nil
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		if err != nil || n == 0 {
			break
		}
		return uint(n), nil
	case map[string]any:
		if id, ok := t["id"]; ok {
			return NormalizeID(id)
		}
		if id, ok := t["_id"]; ok {
			return NormalizeID(id)
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidRelation, v)
}

// NormalizeIDs converts a related reference list. A nil value is an empty
// list and a single reference is a one-element list.
func NormalizeIDs(v any) ([]uint, error) {
	switch t := v.(type) {
	case nil:
		return []uint{}, nil
	case []uint:
		return t, nil
	case []any:
		out := make([]uint, 0, len(t))
		for _, item := range t {
			id, err := NormalizeID(item)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return dedupe(out), nil
	default:
		id, err := NormalizeID(v)
		if err != nil {
			return nil, err
		}
		return []uint{id}, nil
	}
}

// Resolve normalizes a relation value according to the association nature.
// Singular natures yield at most one identifier; a nil value clears.
func (a Association) Resolve(v any) ([]uint, error) {
	if a.Nature.Plural() {
		return NormalizeIDs(v)
	}
	switch t := v.(type) {
	case nil:
		return []uint{}, nil
	case []any:
		if len(t) > 1 {
			return nil, fmt.Errorf("%w: %s accepts a single reference", ErrInvalidRelation, a.Alias)
		}
		return NormalizeIDs(t)
	}
	id, err := NormalizeID(v)
	if err != nil {
		return nil, err
	}
	return []uint{id}, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
