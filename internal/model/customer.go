package model

import (
	"time"

	"cmsapi/internal/schema"
)

// Customer buys from sellers and may have been referred by another customer.
type Customer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Notes         string    `gorm:"type:text" json:"notes"`
	Email         string    `gorm:"size:255;index" json:"email"`
	Age           int       `json:"age"`
	LoyaltyPoints float64   `json:"loyalty_points"`
	VIP           bool      `gorm:"column:vip" json:"vip"`
	ReferrerID    *uint     `gorm:"index" json:"-"`
	Referrer      *Customer `gorm:"foreignKey:ReferrerID" json:"referrer"`
	Sellers       []Seller  `gorm:"many2many:sellers_customers" json:"sellers"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c Customer) Identifier() uint { return c.ID }

var CustomerSchema = register(&schema.Model{
	Name:       "customer",
	Table:      "customers",
	PrimaryKey: "id",
	Timestamps: true,
	Attributes: []schema.Attribute{
		{Name: "name", Type: schema.TypeString},
		{Name: "notes", Type: schema.TypeText},
		{Name: "email", Type: schema.TypeEmail},
		{Name: "age", Type: schema.TypeInteger},
		{Name: "loyalty_points", Type: schema.TypeFloat},
		{Name: "vip", Type: schema.TypeBoolean},
	},
	Associations: []schema.Association{
		{Alias: "referrer", Nature: schema.OneWay, Target: "customers", Field: "Referrer", Column: "referrer_id"},
		{
			Alias: "sellers", Nature: schema.ManyToMany, Target: "sellers", Field: "Sellers",
			JoinTable: "sellers_customers", JoinColumn: "customer_id", InverseColumn: "seller_id",
		},
		{Alias: "documents", Nature: schema.ManyToManyMorph, Target: schema.FileTable, Lazy: true},
	},
})
