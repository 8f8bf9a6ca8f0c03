// Package filter turns generic query parameters into a filter descriptor the
// repositories compile into queries.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cmsapi/internal/schema"

	"github.com/shopspring/decimal"
)

// ErrInvalidFilter is returned when a parameter names an unknown field or
// carries a value that cannot be coerced to the field's type.
var ErrInvalidFilter = errors.New("invalid filter")

// DefaultLimit caps list queries that do not set _limit.
const DefaultLimit = 100

// Unlimited disables the row cap when passed as _limit.
const Unlimited = -1

// Reserved parameter names.
const (
	ParamSort  = "_sort"
	ParamStart = "_start"
	ParamLimit = "_limit"
	ParamQuery = "_q"
)

// Symbol is a comparison operator of a where-condition.
type Symbol string

const (
	Eq                Symbol = "="
	Ne                Symbol = "<>"
	Lt                Symbol = "<"
	Gt                Symbol = ">"
	Lte               Symbol = "<="
	Gte               Symbol = ">="
	Contains          Symbol = "contains"
	ContainsSensitive Symbol = "containss"
	In                Symbol = "in"
)

// suffixes are matched longest first so _lte is not read as _lt.
var suffixes = []struct {
	suffix string
	symbol Symbol
}{
	{"_containss", ContainsSensitive},
	{"_contains", Contains},
	{"_lte", Lte},
	{"_gte", Gte},
	{"_ne", Ne},
	{"_lt", Lt},
	{"_gt", Gt},
	{"_in", In},
}

// Params holds the raw query string; repeated keys keep every value.
type Params map[string][]string

// Get returns the first value of key.
func (p Params) Get(key string) string {
	if v := p[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Add appends a value to key.
func (p Params) Add(key, value string) {
	p[key] = append(p[key], value)
}

// Query returns the search query carried by _q.
func (p Params) Query() string {
	return p.Get(ParamQuery)
}

// Condition is one AND-ed predicate. Value is a scalar, or a []any when the
// parameter was repeated or the symbol is In.
type Condition struct {
	Field  string
	Symbol Symbol
	Value  any
}

// Sort orders results by Key; Order is "asc" or "desc".
type Sort struct {
	Key   string
	Order string
}

// Filter is the descriptor consumed by the repositories.
type Filter struct {
	Where []Condition
	Sort  *Sort
	Start int
	Limit int
}

// Default returns a descriptor with no conditions and the default window.
func Default() *Filter {
	return &Filter{Limit: DefaultLimit}
}

// Convert parses params against model m. Keys are processed in lexical order
// so the resulting conditions are deterministic.
func Convert(m *schema.Model, params Params) (*Filter, error) {
	f := Default()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		values := params[rawKey]
		if len(values) == 0 {
			continue
		}
		key := strings.TrimSuffix(rawKey, "[]")

		switch key {
		case ParamSort:
			s, err := parseSort(m, values[0])
			if err != nil {
				return nil, err
			}
			f.Sort = s
			continue
		case ParamStart:
			n, err := strconv.Atoi(values[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: _start must be a non-negative integer", ErrInvalidFilter)
			}
			f.Start = n
			continue
		case ParamLimit:
			n, err := strconv.Atoi(values[0])
			if err != nil || n < Unlimited {
				return nil, fmt.Errorf("%w: _limit must be an integer >= -1", ErrInvalidFilter)
			}
			f.Limit = n
			continue
		}
		if strings.HasPrefix(key, "_") {
			continue
		}

		field, symbol, typ, err := resolveKey(m, key)
		if err != nil {
			return nil, err
		}
		value, err := coerceValues(typ, symbol, values)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFilter, rawKey, err)
		}
		f.Where = append(f.Where, Condition{Field: field, Symbol: symbol, Value: value})
	}
	return f, nil
}

func resolveKey(m *schema.Model, key string) (string, Symbol, schema.AttributeType, error) {
	if typ, ok := m.FieldType(key); ok {
		return key, Eq, typ, nil
	}
	for _, s := range suffixes {
		if !strings.HasSuffix(key, s.suffix) {
			continue
		}
		field := strings.TrimSuffix(key, s.suffix)
		if typ, ok := m.FieldType(field); ok {
			return field, s.symbol, typ, nil
		}
	}
	return "", "", "", fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, key)
}

func parseSort(m *schema.Model, raw string) (*Sort, error) {
	key, order, _ := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	order = strings.ToLower(strings.TrimSpace(order))
	if order == "" {
		order = "asc"
	}
	if order != "asc" && order != "desc" {
		return nil, fmt.Errorf("%w: sort order %q", ErrInvalidFilter, order)
	}
	if _, ok := m.FieldType(key); !ok {
		return nil, fmt.Errorf("%w: cannot sort by %q", ErrInvalidFilter, key)
	}
	return &Sort{Key: key, Order: order}, nil
}

func coerceValues(typ schema.AttributeType, symbol Symbol, values []string) (any, error) {
	if symbol == In {
		var out []any
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				c, err := coerce(typ, part)
				if err != nil {
					return nil, err
				}
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil, errors.New("empty list")
		}
		return out, nil
	}

	if symbol == Contains || symbol == ContainsSensitive {
		typ = schema.TypeString
	}
	if len(values) == 1 {
		return coerce(typ, values[0])
	}
	out := make([]any, 0, len(values))
	for _, v := range values {
		c, err := coerce(typ, v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func coerce(typ schema.AttributeType, v string) (any, error) {
	switch typ {
	case schema.TypeInteger, schema.TypeBigInteger:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case schema.TypeFloat:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case schema.TypeDecimal:
		return decimal.NewFromString(strings.TrimSpace(v))
	case schema.TypeBoolean:
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return v, nil
	}
}
