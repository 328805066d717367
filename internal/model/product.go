package model

import "time"

// Product represents an item in the catalogue.
type Product struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Image           string     `json:"image,omitempty"`
	Price           int64      `json:"price"`
	OriginalPrice   *int64     `json:"originalPrice,omitempty"`
	Stock           int        `json:"stock"`
	Sold            int        `json:"sold"`
	CategoryID      string     `json:"categoryId"`
	AllowOffers     bool       `json:"allowOffers"`
	AutoAcceptPrice *int64     `json:"autoAcceptPrice,omitempty"`
	AutoRejectPrice *int64     `json:"autoRejectPrice,omitempty"`
	Feedback        []Feedback `json:"feedback,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// OnSale reports whether the product shows a struck-through original price.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// Feedback is a buyer review attached to a product.
type Feedback struct {
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category groups products in the catalogue.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
