package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/dataservice"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/offer"
	"storefront/internal/pricing"
	"storefront/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ErrRefreshFailed marks an error from the reload that follows a successful
// write. The write itself went through; the snapshot may be stale until the
// next successful refresh.
var ErrRefreshFailed = errors.New("state refresh failed")

// State is an immutable snapshot of the storefront. Slices in a published
// snapshot are never modified; callers must not modify them either.
type State struct {
	User             *model.User
	Products         []model.Product
	Categories       []model.Category
	Users            []model.User
	Orders           []model.Order
	Offers           []model.Offer
	Vouchers         []model.Voucher
	Cart             []model.CartItem
	AppliedVoucherID string
}

// Store is the single state container of the storefront. Every mutation
// goes through the data service and then reloads every collection.
type Store struct {
	data        dataservice.Service
	sessions    session.Store
	events      events.Publisher
	calc        *pricing.Calculator
	pricer      *offer.Pricer
	validate    *validator.Validate
	now         func() time.Time
	autoResolve bool
	logger      zerolog.Logger

	// mu serialises mutations together with the refresh that follows them.
	mu sync.Mutex

	stateMu sync.RWMutex
	state   State

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAutoResolveOffers applies a product's accept/reject thresholds to new offers.
func WithAutoResolveOffers(enabled bool) Option {
	return func(s *Store) { s.autoResolve = enabled }
}

// NewStore creates an empty store. Call Refresh to load the collections.
func NewStore(
	data dataservice.Service,
	sessions session.Store,
	publisher events.Publisher,
	calc *pricing.Calculator,
	pricer *offer.Pricer,
	logger zerolog.Logger,
	opts ...Option,
) *Store {
	s := &Store{
		data:     data,
		sessions: sessions,
		events:   publisher,
		calc:     calc,
		pricer:   pricer,
		validate: newValidator(),
		now:      time.Now,
		logger:   logger.With().Str("service", "store").Logger(),
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive every new snapshot. fn runs synchronously
// after the swap and must not call mutating Store methods.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// swap publishes a new snapshot built from the current one.
func (s *Store) swap(change func(next *State)) {
	s.stateMu.Lock()
	next := s.state
	change(&next)
	s.state = next
	s.stateMu.Unlock()

	s.subsMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Refresh reloads every collection from the data service.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reload(ctx)
}

// refresh runs after a successful write. Callers hold s.mu.
func (s *Store) refresh(ctx context.Context) error {
	if err := s.reload(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}

// reload fetches products, categories, users, orders, offers, vouchers and
// the signed-in user's cart, then swaps in the new snapshot.
func (s *Store) reload(ctx context.Context) error {
	products, err := dataservice.ListAs[model.Product](ctx, s.data, dataservice.Products, nil)
	if err != nil {
		return s.loadFailed(dataservice.Products, err)
	}
	categories, err := dataservice.ListAs[model.Category](ctx, s.data, dataservice.Categories, nil)
	if err != nil {
		return s.loadFailed(dataservice.Categories, err)
	}
	users, err := dataservice.ListAs[model.User](ctx, s.data, dataservice.Users, nil)
	if err != nil {
		return s.loadFailed(dataservice.Users, err)
	}
	orders, err := dataservice.ListAs[model.Order](ctx, s.data, dataservice.Orders, nil)
	if err != nil {
		return s.loadFailed(dataservice.Orders, err)
	}
	offers, err := dataservice.ListAs[model.Offer](ctx, s.data, dataservice.Offers, nil)
	if err != nil {
		return s.loadFailed(dataservice.Offers, err)
	}
	vouchers, err := dataservice.ListAs[model.Voucher](ctx, s.data, dataservice.Vouchers, nil)
	if err != nil {
		return s.loadFailed(dataservice.Vouchers, err)
	}

	current := s.Snapshot()

	var user *model.User
	if current.User != nil {
		if u, ok := findUser(users, current.User.ID); ok {
			user = &u
		} else {
			s.logger.Warn().Str("user_id", current.User.ID).Msg("signed-in user no longer exists")
		}
	}

	var cart []model.CartItem
	if user != nil {
		cart, err = s.loadCart(ctx, user.ID, products)
		if err != nil {
			return err
		}
	}

	next := State{
		User:       user,
		Products:   products,
		Categories: categories,
		Users:      users,
		Orders:     orders,
		Offers:     offers,
		Vouchers:   vouchers,
		Cart:       cart,
	}
	next.AppliedVoucherID = s.keepAppliedVoucher(next, current.AppliedVoucherID)

	s.swap(func(st *State) { *st = next })

	s.logger.Debug().
		Int("products", len(products)).
		Int("users", len(users)).
		Int("orders", len(orders)).
		Int("cart_items", len(cart)).
		Msg("state refreshed")

	return nil
}

func (s *Store) loadFailed(collection string, err error) error {
	s.logger.Error().Err(err).Str("collection", collection).Msg("failed to load collection")
	return fmt.Errorf("failed to load %s: %w", collection, err)
}

// loadCart fetches the user's cart rows and joins them against the live
// catalogue. Rows whose product no longer exists are dropped.
func (s *Store) loadCart(ctx context.Context, userID string, products []model.Product) ([]model.CartItem, error) {
	rows, err := dataservice.ListAs[model.CartRow](ctx, s.data, dataservice.Carts, dataservice.Filter{"userId": userID})
	if err != nil {
		return nil, s.loadFailed(dataservice.Carts, err)
	}

	items := make([]model.CartItem, 0, len(rows))
	for _, row := range rows {
		p, ok := findProduct(products, row.ProductID)
		if !ok {
			s.logger.Debug().
				Str("row_id", row.ID).
				Str("product_id", row.ProductID).
				Msg("dropping cart row for missing product")
			continue
		}
		items = append(items, model.CartItem{
			RowID:     row.ID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			PriceUsed: row.PriceUsed,
			Product:   p,
		})
	}
	return items, nil
}

// keepAppliedVoucher returns id when the voucher still exists, is still owned
// by the user and still meets its minimum spend; otherwise "".
func (s *Store) keepAppliedVoucher(st State, id string) string {
	if id == "" {
		return ""
	}
	v, ok := findVoucher(st.Vouchers, id)
	if !ok || st.User == nil || !st.User.OwnsVoucher(id) {
		return ""
	}
	if err := pricing.CheckVoucher(pricing.Subtotal(st.Cart), &v); err != nil {
		s.logger.Info().Str("voucher_id", id).Msg("applied voucher no longer meets minimum spend")
		return ""
	}
	return id
}

// currentUser returns the signed-in, unblocked user.
func (s *Store) currentUser() (model.User, error) {
	st := s.Snapshot()
	if st.User == nil {
		return model.User{}, model.ErrNotAuthenticated
	}
	if st.User.IsBlocked {
		return model.User{}, model.ErrUserBlocked
	}
	return *st.User, nil
}

func (s *Store) currentAdmin() (model.User, error) {
	u, err := s.currentUser()
	if err != nil {
		return u, err
	}
	if !u.IsAdmin() {
		return model.User{}, model.ErrForbidden
	}
	return u, nil
}

// emit publishes an event. Failures are logged and never fail the caller.
func (s *Store) emit(ctx context.Context, eventType string, data any) {
	if err := s.events.Publish(ctx, events.New(eventType, s.now(), data)); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// notFound maps the data service's not-found error onto a domain error.
func notFound(err error, domainErr error) error {
	if errors.Is(err, dataservice.ErrNotFound) {
		return domainErr
	}
	return err
}
