package service

import (
	"context"
	"errors"
	"time"

	"github.com/dentalops/clinicgate/internal/identity/domain"
	"github.com/dentalops/clinicgate/internal/identity/store"
	"github.com/dentalops/clinicgate/pkg/cryptox"
	"github.com/dentalops/clinicgate/pkg/idx"
	"github.com/dentalops/clinicgate/pkg/jwtx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrInvalidToken       = errors.New("invalid_token")
)

// AuthService implements the login / refresh / validate / logout contract the
// gateway consumes.
type AuthService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies credentials and mints a token pair. The login identifier may
// be a username or an email address. Unknown users and bad passwords are
// indistinguishable to the caller; disabled accounts are reported as such
// only after the password checks out.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so user enumeration via latency is harder.
			_, _ = cryptox.HashPassword(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		l.Info("login attempt on disabled account", "user_id", u.ID)
		return nil, ErrAccountDisabled
	}

	sessionID := idx.New().String()

	accessToken, err := s.signAccess(u, sessionID, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		SessionID: sessionID,
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
		User:         u,
	}, nil
}

// Refresh rotates the refresh token: the old record is revoked and a new one
// is minted in the same transaction, so a crash can never leave both or
// neither alive. Reuse of a revoked token revokes the whole user's tokens,
// since it means the token leaked or a rotation response was lost.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked {
		l.Warn("revoked refresh token replayed, revoking session family", "user_id", rt.UserID)
		_ = s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, rt.UserID)
		return nil, ErrInvalidRefresh
	}
	if now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		_ = s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID)
		return nil, ErrInvalidRefresh
	}

	accessToken, err := s.signAccess(u, rt.SessionID, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		SessionID: rt.SessionID, // session survives rotation
		ExpiresAt: now.Add(s.RefreshTTL),
		Revoked:   false,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		ExpiresIn:    s.AccessTTL,
		User:         u,
	}, nil
}

// Validate verifies an access token cryptographically and then checks the
// user still exists and is active, so a deactivation takes effect on the next
// gated navigation instead of at token expiry.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (domain.User, error) {
	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, err
	}
	if !u.Active {
		return domain.User{}, ErrInvalidToken
	}
	return u, nil
}

// Logout revokes every live refresh token for the token's user. It is
// idempotent: revoking an already-logged-out user is a no-op, and an invalid
// access token is not an error worth reporting to someone who is leaving.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.Verifier.Verify(accessToken)
	if err != nil {
		return nil
	}
	return s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, claims.Subject)
}

func (s *AuthService) signAccess(u domain.User, sessionID string, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,      // subject
		sessionID, // session ID
		s.AccessTTL,
		s.Issuer,
		u.Username,
		u.Role,
		now,
	)
	return s.Signer.Sign(claims)
}
