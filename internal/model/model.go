// Package model holds the persisted resources and the schema definitions the
// generic service and repository layers operate on.
package model

import (
	"sort"

	"cmsapi/internal/schema"
)

// Entity is implemented by every resource the generic layers serve.
type Entity interface {
	Identifier() uint
}

var registry = map[string]*schema.Model{}

func register(m *schema.Model) *schema.Model {
	registry[m.Name] = m
	return m
}

// Lookup finds a resource schema by its singular name or its table.
func Lookup(name string) (*schema.Model, bool) {
	if m, ok := registry[name]; ok {
		return m, true
	}
	for _, m := range registry {
		if m.Table == name {
			return m, true
		}
	}
	return nil, false
}

// Schemas returns every registered resource schema ordered by name.
func Schemas() []*schema.Model {
	out := make([]*schema.Model, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tables lists the gorm models in migration order.
func Tables() []any {
	return []any{&Type{}, &Customer{}, &Seller{}, &File{}, &FileMorph{}}
}
