package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/metricx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// SessionService backs /login, /refresh_token and /logout.
type SessionService struct {
	Store         store.Store
	AccessTokens  *AccessTokens
	RefreshTokens *RefreshTokens
	Metrics       *metricx.Metrics
}

// Login checks the credentials and issues a token pair. The refresh token
// is persisted before anything is returned, so a caller never holds a
// refresh token the store doesn't know about.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.DummyVerify(password)
			s.Metrics.Login(ctx, metricx.LoginRejected)
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		s.Metrics.Login(ctx, metricx.LoginFailed)
		return domain.TokenPair{}, fmt.Errorf("load user: %w", err)
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		l.Warn("stored password hash is unusable", slog.String("user_id", user.ID), slog.Any("err", err))
		s.Metrics.Login(ctx, metricx.LoginRejected)
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if !ok {
		s.Metrics.Login(ctx, metricx.LoginRejected)
		return domain.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		l.Info("login refused for inactive user", slog.String("user_id", user.ID))
		s.Metrics.Login(ctx, metricx.LoginRejected)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	refresh, err := s.RefreshTokens.Issue(ctx, user.ID)
	if err != nil {
		s.Metrics.Login(ctx, metricx.LoginFailed)
		return domain.TokenPair{}, err
	}
	s.Metrics.TokenIssued(ctx, metricx.KindRefresh)

	access, err := s.AccessTokens.Issue(user.ID)
	if err != nil {
		s.Metrics.Login(ctx, metricx.LoginFailed)
		return domain.TokenPair{}, err
	}
	s.Metrics.TokenIssued(ctx, metricx.KindAccess)

	if err := s.Store.Users().TouchLastLogin(ctx, user.ID, s.RefreshTokens.codec.Now()); err != nil {
		l.Warn("failed to record last login", slog.String("user_id", user.ID), slog.Any("err", err))
	}

	s.Metrics.Login(ctx, metricx.LoginSucceeded)
	l.Info("login succeeded", slog.String("user_id", user.ID))

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is not rotated.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	subject, err := s.RefreshTokens.Verify(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.Metrics.RefreshDenied(ctx, denialReason(err))
		}
		return "", err
	}

	access, err := s.AccessTokens.Issue(subject)
	if err != nil {
		return "", err
	}
	s.Metrics.TokenIssued(ctx, metricx.KindAccess)
	return access, nil
}

// Logout revokes the refresh token. Access tokens already handed out stay
// valid until they expire.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.RefreshTokens.Revoke(ctx, refreshToken); err != nil {
		return err
	}
	s.Metrics.TokenRevoked(ctx)
	return nil
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, ErrRefreshRevoked):
		return "revoked"
	case errors.Is(err, ErrRefreshExpired):
		return "expired"
	default:
		return "not_found"
	}
}
