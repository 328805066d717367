package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Account *handler.AccountHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Loyalty *handler.LoyaltyHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// Session and account
	mux.HandleFunc("POST /api/session", h.Account.Login)
	mux.HandleFunc("DELETE /api/session", h.Account.Logout)
	mux.HandleFunc("POST /api/register", h.Account.Register)
	mux.HandleFunc("GET /api/me", h.Account.Me)
	mux.HandleFunc("PATCH /api/me", h.Account.UpdateProfile)
	mux.HandleFunc("POST /api/wishlist/{productId}", h.Account.ToggleWishlist)
	mux.HandleFunc("GET /api/addresses", h.Account.Addresses)
	mux.HandleFunc("POST /api/addresses", h.Account.AddAddress)
	mux.HandleFunc("POST /api/contact", h.Account.Contact)

	// Catalogue
	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("GET /api/categories", h.Product.Categories)

	// Cart and checkout
	mux.HandleFunc("GET /api/cart", h.Cart.Get)
	mux.HandleFunc("DELETE /api/cart", h.Cart.Clear)
	mux.HandleFunc("POST /api/cart/items", h.Cart.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{productId}", h.Cart.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", h.Cart.RemoveItem)
	mux.HandleFunc("PUT /api/cart/voucher", h.Cart.ApplyVoucher)
	mux.HandleFunc("DELETE /api/cart/voucher", h.Cart.RemoveVoucher)
	mux.HandleFunc("POST /api/checkout", h.Order.Checkout)

	// Orders
	mux.HandleFunc("GET /api/orders", h.Order.List)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.Order.Cancel)

	// Vouchers and offers
	mux.HandleFunc("GET /api/vouchers", h.Loyalty.Vouchers)
	mux.HandleFunc("POST /api/vouchers/{id}/redeem", h.Loyalty.Redeem)
	mux.HandleFunc("GET /api/offers", h.Loyalty.Offers)
	mux.HandleFunc("POST /api/offers", h.Loyalty.MakeOffer)

	// Back office
	mux.HandleFunc("POST /api/admin/products", h.Product.Create)
	mux.HandleFunc("PATCH /api/admin/products/{id}", h.Product.Update)
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.Product.Delete)
	mux.HandleFunc("POST /api/admin/categories", h.Product.CreateCategory)
	mux.HandleFunc("POST /api/admin/vouchers", h.Loyalty.CreateVoucher)
	mux.HandleFunc("PATCH /api/admin/vouchers/{id}", h.Loyalty.UpdateVoucher)
	mux.HandleFunc("DELETE /api/admin/vouchers/{id}", h.Loyalty.DeleteVoucher)
	mux.HandleFunc("POST /api/admin/offers/{id}/resolve", h.Loyalty.ResolveOffer)
	mux.HandleFunc("PATCH /api/admin/orders/{id}", h.Order.UpdateStatus)
	mux.HandleFunc("PATCH /api/admin/users/{id}", h.Account.SetBlocked)

	// Apply middleware in order: CorrelationID -> Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}
