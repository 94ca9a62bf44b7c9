package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	// Products is populated only by the combined catalog listing.
	Products []Product `json:"products,omitempty"`
}

// Product carries its name in Turkish, German and Punjabi. The Turkish name
// is the canonical one; the others may be empty until translated.
type Product struct {
	ID         string              `json:"id"`
	NameTR     string              `json:"name_tr"`
	NameDE     string              `json:"name_de"`
	NamePA     string              `json:"name_pa"`
	Unit       string              `json:"unit"`
	Image      string              `json:"image"`
	CategoryID string              `json:"categoryId"`
	LastPrice  decimal.NullDecimal `json:"lastPrice"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// ProductRef is the reduced product shape nested under pending order items.
type ProductRef struct {
	NameTR string `json:"name_tr"`
	NameDE string `json:"name_de"`
	Unit   string `json:"unit"`
}
