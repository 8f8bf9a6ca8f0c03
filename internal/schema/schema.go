// Package schema describes resources the way content types are declared:
// an ordered list of typed attributes plus named associations, each tagged
// with a relation nature that drives eager loading, cascade on removal and
// relation synchronization.
package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a payload key is neither an attribute nor
// an association alias of the model.
var ErrUnknownField = errors.New("unknown field")

// AttributeType is the declared storage type of a scalar attribute.
type AttributeType string

const (
	TypeString      AttributeType = "string"
	TypeText        AttributeType = "text"
	TypeInteger     AttributeType = "integer"
	TypeBigInteger  AttributeType = "biginteger"
	TypeFloat       AttributeType = "float"
	TypeDecimal     AttributeType = "decimal"
	TypeBoolean     AttributeType = "boolean"
	TypeEmail       AttributeType = "email"
	TypeEnumeration AttributeType = "enumeration"
	TypeDate        AttributeType = "date"
	TypeDateTime    AttributeType = "datetime"
	TypeJSON        AttributeType = "json"
)

// Attribute is a scalar column of a model. Name is both the JSON key and
// the column name.
type Attribute struct {
	Name string
	Type AttributeType
}

// Model is the schema definition of one resource.
type Model struct {
	// Name is the singular resource name used in routes and upload refs (e.g. "seller").
	Name string
	// Table is the database table, also used as related_type for morph links.
	Table      string
	PrimaryKey string
	// Timestamps adds created_at and updated_at as sortable, filterable fields.
	Timestamps   bool
	Attributes   []Attribute
	Associations []Association
}

// Attribute looks up a scalar attribute by name.
func (m *Model) Attribute(name string) (Attribute, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Association looks up an association by alias.
func (m *Model) Association(alias string) (Association, bool) {
	for _, a := range m.Associations {
		if a.Alias == alias {
			return a, true
		}
	}
	return Association{}, false
}

// Aliases returns the association aliases in declaration order.
func (m *Model) Aliases() []string {
	out := make([]string, 0, len(m.Associations))
	for _, a := range m.Associations {
		out = append(out, a.Alias)
	}
	return out
}

// IsAlias reports whether name is an association alias.
func (m *Model) IsAlias(name string) bool {
	_, ok := m.Association(name)
	return ok
}

// FieldType resolves the type of a filterable field: the primary key,
// timestamps when enabled, and every attribute that is not an alias.
func (m *Model) FieldType(name string) (AttributeType, bool) {
	if name == m.PrimaryKey {
		return TypeInteger, true
	}
	if m.Timestamps && (name == "created_at" || name == "updated_at") {
		return TypeDateTime, true
	}
	if m.IsAlias(name) {
		return "", false
	}
	if a, ok := m.Attribute(name); ok {
		return a.Type, true
	}
	return "", false
}

// Populate returns the eager-load names of every association flagged for
// auto-population.
func (m *Model) Populate() []string {
	out := make([]string, 0, len(m.Associations))
	for _, a := range m.Associations {
		if a.AutoPopulate() {
			out = append(out, a.Field)
		}
	}
	return out
}

// Split separates a value bag into relation data (keys matching an
// association alias) and column data (attributes). The primary key and
// timestamps are dropped; any other key is an ErrUnknownField.
func (m *Model) Split(values map[string]any) (relations, data map[string]any, err error) {
	relations = make(map[string]any)
	data = make(map[string]any)
	for k, v := range values {
		switch {
		case m.IsAlias(k):
			relations[k] = v
		case k == m.PrimaryKey, k == "created_at", k == "updated_at":
			continue
		default:
			if _, ok := m.Attribute(k); !ok {
				return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, m.Name, k)
			}
			data[k] = v
		}
	}
	return relations, data, nil
}

// ClearPayload returns the relation values that detach a record from all of
// its associations: nil for singular natures and an empty list for plural
// ones.
func (m *Model) ClearPayload() map[string]any {
	out := make(map[string]any, len(m.Associations))
	for _, a := range m.Associations {
		switch {
		case a.Nature.Singular():
			out[a.Alias] = nil
		case a.Nature.Plural():
			out[a.Alias] = []any{}
		}
	}
	return out
}

// SearchPlan groups the searchable attributes by how a free-text query is
// matched against them.
type SearchPlan struct {
	// Text holds string and text attributes, matched with the engine's full-text operator.
	Text []string
	// Numeric holds integer, decimal and float attributes, matched by equality.
	Numeric []string
	// Boolean attributes are matched only by the literals true and false.
	Boolean []string
	// Other holds the remaining attributes, matched by case-insensitive substring.
	Other []string
}

// SearchPlan partitions the attributes, excluding the primary key and
// association aliases.
func (m *Model) SearchPlan() SearchPlan {
	var p SearchPlan
	for _, a := range m.Attributes {
		if a.Name == m.PrimaryKey || m.IsAlias(a.Name) {
			continue
		}
		switch a.Type {
		case TypeString, TypeText:
			p.Text = append(p.Text, a.Name)
		case TypeInteger, TypeDecimal, TypeFloat:
			p.Numeric = append(p.Numeric, a.Name)
		case TypeBoolean:
			p.Boolean = append(p.Boolean, a.Name)
		default:
			p.Other = append(p.Other, a.Name)
		}
	}
	return p
}
