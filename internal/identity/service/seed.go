package service

import (
	"context"
	"log/slog"

	"github.com/dentalops/clinicgate/internal/identity/domain"
	"github.com/dentalops/clinicgate/internal/identity/store"
	"github.com/dentalops/clinicgate/pkg/cryptox"
	"github.com/dentalops/clinicgate/pkg/idx"
)

// SeedService creates the initial admin account on an empty database so a
// fresh deployment has a way in. It does nothing once any user exists.
type SeedService struct {
	Store store.Store
}

func (s *SeedService) SeedAdmin(ctx context.Context, log *slog.Logger, username, email, password string) error {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	admin := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := s.Store.Users().CreateUser(ctx, admin); err != nil {
		return err
	}

	log.Info("seeded initial admin user", "username", username)
	return nil
}
