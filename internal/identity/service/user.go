package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalops/clinicgate/internal/identity/domain"
	"github.com/dentalops/clinicgate/internal/identity/store"
	"github.com/dentalops/clinicgate/pkg/cryptox"
)

var (
	ErrEmailTaken    = errors.New("email_taken")
	ErrWrongPassword = errors.New("wrong_password")
)

type UserService struct {
	Store store.Store
}

func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdateProfile changes name and/or email. Empty fields keep their current
// value.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		name = u.Name
	}
	if email == "" {
		email = u.Email
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every refresh token so other sessions must log in again.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		return ErrWrongPassword
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
	})
}
