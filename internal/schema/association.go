package schema

// Nature is the cardinality and direction of an association.
type Nature string

const (
	OneWay          Nature = "oneWay"
	OneToOne        Nature = "oneToOne"
	OneToMany       Nature = "oneToMany"
	ManyToOne       Nature = "manyToOne"
	ManyToMany      Nature = "manyToMany"
	OneToManyMorph  Nature = "oneToManyMorph"
	ManyToManyMorph Nature = "manyToManyMorph"
)

// Singular natures hold at most one related identifier.
func (n Nature) Singular() bool {
	switch n {
	case OneWay, OneToOne, ManyToOne, OneToManyMorph:
		return true
	}
	return false
}

// Plural natures hold a list of related identifiers.
func (n Nature) Plural() bool {
	switch n {
	case OneToMany, ManyToMany, ManyToManyMorph:
		return true
	}
	return false
}

// Morph natures link to uploaded files through the polymorphic morph table.
func (n Nature) Morph() bool {
	return n == OneToManyMorph || n == ManyToManyMorph
}

// Morph table layout shared by every morph association.
const (
	MorphTable             = "upload_file_morph"
	MorphFileColumn        = "upload_file_id"
	MorphRelatedIDColumn   = "related_id"
	MorphRelatedTypeColumn = "related_type"
	MorphFieldColumn       = "field"
	FileTable              = "upload_file"
)

// Association is a named relation of a model to another table.
type Association struct {
	Alias  string
	Nature Nature
	// Target is the related table.
	Target string
	// Field is the struct field eager-loaded for this association. Empty
	// means the association is never preloaded.
	Field string
	// Column is the foreign key column. It lives on the owner table for
	// oneWay, oneToOne and manyToOne, and on the target table for oneToMany.
	Column string
	// JoinTable, JoinColumn (owner side) and InverseColumn (target side)
	// describe manyToMany storage.
	JoinTable     string
	JoinColumn    string
	InverseColumn string
	// Lazy associations are left out of auto-population.
	Lazy bool
}

// AutoPopulate reports whether the association is eager-loaded by default.
func (a Association) AutoPopulate() bool {
	return !a.Lazy && a.Field != ""
}
