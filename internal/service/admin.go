package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"storefront/internal/dataservice"
	"storefront/internal/model"
)

// AddProduct creates a product.
func (s *Store) AddProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	created, err := dataservice.CreateAs[model.Product](ctx, s.data, dataservice.Products, model.Product{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Image:           in.Image,
		Price:           in.Price,
		OriginalPrice:   in.OriginalPrice,
		Stock:           in.Stock,
		CategoryID:      in.CategoryID,
		AllowOffers:     in.AllowOffers,
		AutoAcceptPrice: in.AutoAcceptPrice,
		AutoRejectPrice: in.AutoRejectPrice,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().Str("product_id", created.ID).Msg("product created")

	if err := s.refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateProduct patches a product.
func (s *Store) UpdateProduct(ctx context.Context, productID string, in ProductPatch) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, ok := findProduct(s.Snapshot().Products, productID); !ok {
		return nil, model.ErrProductNotFound
	}

	updated, err := dataservice.PatchAs[model.Product](ctx, s.data, dataservice.Products, productID, in.fields())
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", notFound(err, model.ErrProductNotFound))
	}

	if err := s.refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// DeleteProduct deletes a product. Cart rows that reference it disappear
// from carts on the next reload.
func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return err
	}

	if err := s.data.Delete(ctx, dataservice.Products, productID); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", notFound(err, model.ErrProductNotFound))
	}

	s.logger.Info().Str("product_id", productID).Msg("product deleted")
	return s.refresh(ctx)
}

// AddCategory creates a category.
func (s *Store) AddCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.currentAdmin(); err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	slug := in.Slug
	if slug == "" {
		slug = slugify(in.Name)
	}

	created, err := dataservice.CreateAs[model.Category](ctx, s.data, dataservice.Categories, model.Category{
		Name: strings.TrimSpace(in.Name),
		Slug: slug,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	if err := s.refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// BlockUser prevents a user from signing in or acting.
func (s *Store) BlockUser(ctx context.Context, userID string) error {
	return s.setBlocked(ctx, userID, true)
}

// UnblockUser lifts a block.
func (s *Store) UnblockUser(ctx context.Context, userID string) error {
	return s.setBlocked(ctx, userID, false)
}

func (s *Store) setBlocked(ctx context.Context, userID string, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin, err := s.currentAdmin()
	if err != nil {
		return err
	}
	if admin.ID == userID {
		return model.NewValidationError("admins cannot block themselves")
	}

	if _, err := s.data.Patch(ctx, dataservice.Users, userID, map[string]any{"isBlocked": blocked}); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Bool("blocked", blocked).Msg("failed to update user")
		return fmt.Errorf("failed to update user: %w", notFound(err, model.ErrUserNotFound))
	}

	s.logger.Info().Str("user_id", userID).Bool("blocked", blocked).Msg("user block changed")
	return s.refresh(ctx)
}

// slugify lower-cases name and joins its words with hyphens.
func slugify(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "-")
}
