package model

import (
	"slices"
	"time"
)

// Role distinguishes shoppers from back-office users.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a storefront account.
type User struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Points    int64     `json:"points"`
	Vouchers  []string  `json:"vouchers"`
	Wishlist  []string  `json:"wishlist"`
	IsBlocked bool      `json:"isBlocked"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnsVoucher reports whether the user holds the voucher.
func (u User) OwnsVoucher(voucherID string) bool {
	return slices.Contains(u.Vouchers, voucherID)
}

// InWishlist reports whether the product is on the user's wishlist.
func (u User) InWishlist(productID string) bool {
	return slices.Contains(u.Wishlist, productID)
}

// IsAdmin reports whether the user has back-office access.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Address is a saved shipping address.
type Address struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	Label     string `json:"label,omitempty"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line      string `json:"line"`
	IsDefault bool   `json:"isDefault"`
}

// LoginRecord is an entry in a user's login history.
type LoginRecord struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId"`
	At        time.Time `json:"at"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// ActiveSession marks a user as currently signed in.
type ActiveSession struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId"`
	StartedAt time.Time `json:"startedAt"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
