package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/dataservice"
	"storefront/internal/model"
	"storefront/internal/session"
)

// Login signs in the cached user matching email (case-insensitively) and role.
// There is no password check; the data service is trusted.
func (s *Store) Login(ctx context.Context, email string, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.login(ctx, email, role)
}

func (s *Store) login(ctx context.Context, email string, role model.Role) (*model.User, error) {
	var (
		user  model.User
		found bool
	)
	for _, u := range s.Snapshot().Users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) && u.Role == role {
			user, found = u, true
			break
		}
	}
	if !found {
		s.logger.Debug().Str("email", email).Str("role", string(role)).Msg("login rejected")
		return nil, model.ErrInvalidCredentials
	}
	if user.IsBlocked {
		s.logger.Warn().Str("user_id", user.ID).Msg("blocked user attempted login")
		return nil, model.ErrUserBlocked
	}

	now := s.now().UTC()

	var activeID string
	active, err := dataservice.CreateAs[model.ActiveSession](ctx, s.data, dataservice.ActiveSessions, model.ActiveSession{
		UserID:    user.ID,
		StartedAt: now,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record active session")
	} else {
		activeID = active.ID
	}

	err = s.sessions.Save(ctx, session.Session{
		UserID:          user.ID,
		Email:           user.Email,
		Role:            user.Role,
		ActiveSessionID: activeID,
		LoggedInAt:      now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to persist session")
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	if _, err := s.data.Create(ctx, dataservice.LoginHistory, model.LoginRecord{UserID: user.ID, At: now}); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login history")
	}

	s.swap(func(st *State) {
		st.User = &user
		st.Cart = nil
		st.AppliedVoucherID = ""
	})

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.Snapshot().User, nil
}

// Logout forgets the signed-in user, the cart and the applied voucher.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.Snapshot()
	if st.User == nil {
		return nil
	}

	if sess, err := s.sessions.Load(ctx); err == nil && sess != nil && sess.ActiveSessionID != "" {
		if err := s.data.Delete(ctx, dataservice.ActiveSessions, sess.ActiveSessionID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ActiveSessionID).Msg("failed to end active session")
		}
	}

	s.swap(func(next *State) {
		next.User = nil
		next.Cart = nil
		next.AppliedVoucherID = ""
	})

	s.logger.Info().Str("user_id", st.User.ID).Msg("user logged out")

	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Restore signs the persisted session's user back in. The session is dropped
// when the user no longer exists or has been blocked.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return false, nil
	}

	user, ok := findUser(s.Snapshot().Users, sess.UserID)
	if !ok || user.IsBlocked {
		s.logger.Info().Str("user_id", sess.UserID).Bool("found", ok).Msg("discarding stale session")
		if err := s.sessions.Clear(ctx); err != nil {
			return false, fmt.Errorf("failed to clear session: %w", err)
		}
		return false, nil
	}

	s.swap(func(st *State) { st.User = &user })

	if err := s.refresh(ctx); err != nil {
		return true, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("session restored")
	return true, nil
}

// Register opens a user account with no points and signs it in.
func (s *Store) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(in); err != nil {
		return nil, err
	}

	users, err := dataservice.ListAs[model.User](ctx, s.data, dataservice.Users, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	email := strings.TrimSpace(in.Email)
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return nil, model.ErrEmailTaken
		}
	}

	user := model.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Role:      model.RoleUser,
		Phone:     in.Phone,
		Vouchers:  []string{},
		Wishlist:  []string{},
		CreatedAt: s.now().UTC(),
	}
	created, err := dataservice.CreateAs[model.User](ctx, s.data, dataservice.Users, user)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.login(ctx, created.Email, created.Role)
}

// UpdateProfile patches the signed-in user's name, phone and address.
func (s *Store) UpdateProfile(ctx context.Context, in ProfileInput) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if len(fields) == 0 {
		return &u, nil
	}

	if _, err := s.data.Patch(ctx, dataservice.Users, u.ID, fields); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", notFound(err, model.ErrUserNotFound))
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.Snapshot().User, nil
}

// CurrentUser returns the signed-in user, or nil.
func (s *Store) CurrentUser() *model.User {
	return s.Snapshot().User
}
