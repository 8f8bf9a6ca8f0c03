package model

import (
	"time"

	"cmsapi/internal/schema"

	"github.com/shopspring/decimal"
)

// Seller is a merchant, optionally classified by a Type.
type Seller struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Rating      decimal.Decimal `gorm:"type:decimal(10,2)" json:"rating"`
	Employees   int             `json:"employees"`
	Verified    bool            `json:"verified"`
	Status      string          `gorm:"size:32;default:active" json:"status"`
	TypeID      *uint           `gorm:"index" json:"-"`
	Type        *Type           `gorm:"foreignKey:TypeID" json:"type"`
	Customers   []Customer      `gorm:"many2many:sellers_customers" json:"customers"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s Seller) Identifier() uint { return s.ID }

var SellerSchema = register(&schema.Model{
	Name:       "seller",
	Table:      "sellers",
	PrimaryKey: "id",
	Timestamps: true,
	Attributes: []schema.Attribute{
		{Name: "name", Type: schema.TypeString},
		{Name: "description", Type: schema.TypeText},
		{Name: "rating", Type: schema.TypeDecimal},
		{Name: "employees", Type: schema.TypeInteger},
		{Name: "verified", Type: schema.TypeBoolean},
		{Name: "status", Type: schema.TypeEnumeration},
	},
	Associations: []schema.Association{
		{Alias: "type", Nature: schema.ManyToOne, Target: "types", Field: "Type", Column: "type_id"},
		{
			Alias: "customers", Nature: schema.ManyToMany, Target: "customers", Field: "Customers",
			JoinTable: "sellers_customers", JoinColumn: "seller_id", InverseColumn: "customer_id",
		},
		{Alias: "logo", Nature: schema.OneToManyMorph, Target: schema.FileTable, Lazy: true},
	},
})
