package model

import (
	"time"

	"cmsapi/internal/schema"
)

// Type classifies sellers.
type Type struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"size:64;index" json:"code"`
	Sellers     []Seller  `gorm:"foreignKey:TypeID" json:"sellers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Type) Identifier() uint { return t.ID }

var TypeSchema = register(&schema.Model{
	Name:       "type",
	Table:      "types",
	PrimaryKey: "id",
	Timestamps: true,
	Attributes: []schema.Attribute{
		{Name: "name", Type: schema.TypeString},
		{Name: "description", Type: schema.TypeText},
		{Name: "code", Type: schema.TypeEnumeration},
	},
	Associations: []schema.Association{
		{Alias: "sellers", Nature: schema.OneToMany, Target: "sellers", Field: "Sellers", Column: "type_id"},
	},
})
