package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

// ProfileInput changes the signed-in user's profile. Nil fields are left alone.
type ProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// ProductInput describes a new product.
type ProductInput struct {
	Name            string `json:"name" validate:"required,max=200"`
	Description     string `json:"description" validate:"omitempty,max=5000"`
	Image           string `json:"image" validate:"omitempty,url"`
	Price           int64  `json:"price" validate:"gt=0"`
	OriginalPrice   *int64 `json:"originalPrice" validate:"omitempty,gt=0"`
	Stock           int    `json:"stock" validate:"gte=0"`
	CategoryID      string `json:"categoryId"`
	AllowOffers     bool   `json:"allowOffers"`
	AutoAcceptPrice *int64 `json:"autoAcceptPrice" validate:"omitempty,gt=0"`
	AutoRejectPrice *int64 `json:"autoRejectPrice" validate:"omitempty,gt=0"`
}

// ProductPatch changes a product. Nil fields are left alone.
type ProductPatch struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=5000"`
	Image           *string `json:"image" validate:"omitempty,url"`
	Price           *int64  `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice   *int64  `json:"originalPrice" validate:"omitempty,gte=0"`
	Stock           *int    `json:"stock" validate:"omitempty,gte=0"`
	CategoryID      *string `json:"categoryId"`
	AllowOffers     *bool   `json:"allowOffers"`
	AutoAcceptPrice *int64  `json:"autoAcceptPrice" validate:"omitempty,gte=0"`
	AutoRejectPrice *int64  `json:"autoRejectPrice" validate:"omitempty,gte=0"`
}

// fields returns the patch as data service fields.
func (p ProductPatch) fields() map[string]any {
	fields := make(map[string]any)
	set := func(key string, ok bool, v any) {
		if ok {
			fields[key] = v
		}
	}
	set("name", p.Name != nil, p.Name)
	set("description", p.Description != nil, p.Description)
	set("image", p.Image != nil, p.Image)
	set("price", p.Price != nil, p.Price)
	set("originalPrice", p.OriginalPrice != nil, p.OriginalPrice)
	set("stock", p.Stock != nil, p.Stock)
	set("categoryId", p.CategoryID != nil, p.CategoryID)
	set("allowOffers", p.AllowOffers != nil, p.AllowOffers)
	set("autoAcceptPrice", p.AutoAcceptPrice != nil, p.AutoAcceptPrice)
	set("autoRejectPrice", p.AutoRejectPrice != nil, p.AutoRejectPrice)
	return fields
}

// CategoryInput describes a new category. An empty slug is derived from the name.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"omitempty,max=100"`
}

// VoucherInput describes a new voucher.
type VoucherInput struct {
	Code        string `json:"code" validate:"required,max=50"`
	Discount    int64  `json:"discount" validate:"gt=0"`
	MinSpend    int64  `json:"minSpend" validate:"gte=0"`
	PointCost   int64  `json:"pointCost" validate:"gte=0"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// VoucherPatch changes a voucher. Nil fields are left alone.
type VoucherPatch struct {
	Code        *string `json:"code" validate:"omitempty,min=1,max=50"`
	Discount    *int64  `json:"discount" validate:"omitempty,gt=0"`
	MinSpend    *int64  `json:"minSpend" validate:"omitempty,gte=0"`
	PointCost   *int64  `json:"pointCost" validate:"omitempty,gte=0"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// CheckoutInput carries the delivery details of an order.
type CheckoutInput struct {
	ShippingAddress string `json:"shippingAddress" validate:"required,max=500"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,max=50"`
}

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=2000"`
}

// AddressInput is a shipping address to save.
type AddressInput struct {
	Label     string `json:"label" validate:"omitempty,max=50"`
	Recipient string `json:"recipient" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,max=30"`
	Line      string `json:"line" validate:"required,max=500"`
	IsDefault bool   `json:"isDefault"`
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates input and converts failures into a validation error.
func (s *Store) check(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return model.NewValidationError(strings.Join(messages, "; "))
}
