package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

type UserService struct {
	Store store.Store

	// HashAlgorithm is used for new passwords, cryptox.AlgBcrypt when empty.
	HashAlgorithm string
}

// NewUser is the input to Create. Password is plain text.
type NewUser struct {
	TenantID     string
	Email        string
	Password     string
	FirstName    string
	LastName     string
	ContactPhone string
	Address      string

	DateOfBirth       *time.Time
	Gender            string
	ProfilePictureURL string
}

// Create hashes the password and stores a new active user.
func (s *UserService) Create(ctx context.Context, in NewUser) (domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return domain.User{}, ErrInvalidInput
	}

	alg := s.HashAlgorithm
	if alg == "" {
		alg = cryptox.AlgBcrypt
	}
	hash, err := cryptox.HashPassword(in.Password, alg)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		TenantID:     in.TenantID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ContactPhone: in.ContactPhone,
		Address:      in.Address,
		CreatedAt:    now(),
		IsActive:     true,

		DateOfBirth:       in.DateOfBirth,
		Gender:            in.Gender,
		ProfilePictureURL: in.ProfilePictureURL,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, userWriteError(err)
	}
	return u, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	return u, notFound(err)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	return u, notFound(err)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// Update applies patch to the stored user and returns the result.
func (s *UserService) Update(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return domain.User{}, ErrInvalidInput
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(u)
		return tx.Users().UpdateUser(ctx, updated)
	})
	if err != nil {
		return domain.User{}, userWriteError(err)
	}
	return updated, nil
}

// Delete soft deletes the user and revokes their live refresh tokens in the
// same transaction. Access tokens already issued run until they expire.
func (s *UserService) Delete(ctx context.Context, id string) error {
	at := now()
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().DeleteUser(ctx, id, at); err != nil {
			return err
		}
		_, err := tx.RefreshTokens().RevokeUserRefreshTokens(ctx, id, at)
		return err
	})
	return notFound(err)
}

func userWriteError(err error) error {
	switch {
	case store.IsConflict(err, store.ConstraintUserEmail):
		return ErrEmailTaken
	case errors.Is(err, store.ErrReferenceNotFound):
		return ErrUnknownTenant
	default:
		return notFound(err)
	}
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// now is the creation timestamp for new rows, at the precision every
// driver round-trips.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
