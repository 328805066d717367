package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeValidation             = "VALIDATION_FAILED"
	ErrCodeNotAuthenticated       = "NOT_AUTHENTICATED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeUserBlocked            = "USER_BLOCKED"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken             = "EMAIL_TAKEN"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeEmptyCart              = "EMPTY_CART"
	ErrCodeCartItemNotFound       = "CART_ITEM_NOT_FOUND"
	ErrCodeVoucherNotFound        = "VOUCHER_NOT_FOUND"
	ErrCodeVoucherMinSpend        = "VOUCHER_MIN_SPEND"
	ErrCodeVoucherNotOwned        = "VOUCHER_NOT_OWNED"
	ErrCodeVoucherAlreadyOwned    = "VOUCHER_ALREADY_OWNED"
	ErrCodeVoucherCodeTaken       = "VOUCHER_CODE_TAKEN"
	ErrCodeInsufficientPoints     = "INSUFFICIENT_POINTS"
	ErrCodeOffersNotAllowed       = "OFFERS_NOT_ALLOWED"
	ErrCodeInvalidOfferPrice      = "INVALID_OFFER_PRICE"
	ErrCodeOfferNotFound          = "OFFER_NOT_FOUND"
	ErrCodeInvalidOfferTransition = "INVALID_OFFER_TRANSITION"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeInvalidOrderTransition = "INVALID_ORDER_TRANSITION"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeInternalError          = "INTERNAL_ERROR"
	ErrCodeDataServiceUnavailable = "DATA_SERVICE_UNAVAILABLE"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so errors.Is(err, ErrValidation) holds
// for any validation failure.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidation             = NewDomainError(ErrCodeValidation, "Validation failed")
	ErrNotAuthenticated       = NewDomainError(ErrCodeNotAuthenticated, "You must be logged in")
	ErrForbidden              = NewDomainError(ErrCodeForbidden, "Admin role required")
	ErrUserBlocked            = NewDomainError(ErrCodeUserBlocked, "This account has been blocked")
	ErrInvalidCredentials     = NewDomainError(ErrCodeInvalidCredentials, "No account matches that email and role")
	ErrEmailTaken             = NewDomainError(ErrCodeEmailTaken, "An account with that email already exists")
	ErrUserNotFound           = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInsufficientStock      = NewDomainError(ErrCodeInsufficientStock, "Quantity exceeds available stock")
	ErrEmptyCart              = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrCartItemNotFound       = NewDomainError(ErrCodeCartItemNotFound, "Product is not in the cart")
	ErrVoucherNotFound        = NewDomainError(ErrCodeVoucherNotFound, "Voucher not found")
	ErrVoucherMinSpend        = NewDomainError(ErrCodeVoucherMinSpend, "Cart subtotal is below the voucher minimum spend")
	ErrVoucherNotOwned        = NewDomainError(ErrCodeVoucherNotOwned, "You do not own this voucher")
	ErrVoucherAlreadyOwned    = NewDomainError(ErrCodeVoucherAlreadyOwned, "You already own this voucher")
	ErrVoucherCodeTaken       = NewDomainError(ErrCodeVoucherCodeTaken, "A voucher with that code already exists")
	ErrInsufficientPoints     = NewDomainError(ErrCodeInsufficientPoints, "Not enough points to redeem this voucher")
	ErrOffersNotAllowed       = NewDomainError(ErrCodeOffersNotAllowed, "This product does not accept offers")
	ErrInvalidOfferPrice      = NewDomainError(ErrCodeInvalidOfferPrice, "Offer price must be positive and below the listed price")
	ErrOfferNotFound          = NewDomainError(ErrCodeOfferNotFound, "Offer not found")
	ErrInvalidOfferTransition = NewDomainError(ErrCodeInvalidOfferTransition, "Offer has already been resolved")
	ErrOrderNotFound          = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidOrderTransition = NewDomainError(ErrCodeInvalidOrderTransition, "Order status change not allowed")
)

// NewValidationError wraps a field validation message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}
