package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/dataservice"
	"storefront/internal/model"
)

// SubmitContact stores a contact form message. No sign-in is needed.
func (s *Store) SubmitContact(ctx context.Context, in ContactInput) (*model.ContactMessage, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	created, err := dataservice.CreateAs[model.ContactMessage](ctx, s.data, dataservice.ContactMessages, model.ContactMessage{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store contact message")
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return created, nil
}

// AddAddress saves a shipping address for the signed-in user. A new default
// address clears the flag on the user's other addresses.
func (s *Store) AddAddress(ctx context.Context, in AddressInput) (*model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	existing, err := s.addresses(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	isDefault := in.IsDefault || len(existing) == 0

	if isDefault {
		for _, a := range existing {
			if !a.IsDefault {
				continue
			}
			if _, err := s.data.Patch(ctx, dataservice.Addresses, a.ID, map[string]any{"isDefault": false}); err != nil {
				s.logger.Error().Err(err).Str("address_id", a.ID).Msg("failed to clear default address")
				return nil, fmt.Errorf("failed to update address: %w", err)
			}
		}
	}

	created, err := dataservice.CreateAs[model.Address](ctx, s.data, dataservice.Addresses, model.Address{
		UserID:    u.ID,
		Label:     in.Label,
		Recipient: in.Recipient,
		Phone:     in.Phone,
		Line:      in.Line,
		IsDefault: isDefault,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to create address")
		return nil, fmt.Errorf("failed to save address: %w", err)
	}
	return created, nil
}

// Addresses lists the signed-in user's saved addresses.
func (s *Store) Addresses(ctx context.Context) ([]model.Address, error) {
	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	return s.addresses(ctx, u.ID)
}

func (s *Store) addresses(ctx context.Context, userID string) ([]model.Address, error) {
	addrs, err := dataservice.ListAs[model.Address](ctx, s.data, dataservice.Addresses, dataservice.Filter{"userId": userID})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addrs, nil
}
