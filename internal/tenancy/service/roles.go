package service

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

type RolesService struct {
	Store store.Store
}

func (s *RolesService) Create(ctx context.Context, name, description string) (domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Role{}, ErrInvalidInput
	}

	r := domain.Role{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now(),
	}
	if err := s.Store.Roles().CreateRole(ctx, r); err != nil {
		return domain.Role{}, roleWriteError(err)
	}
	return r, nil
}

// GetRoleByID fetches a role by its ID.
func (s *RolesService) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	r, err := s.Store.Roles().GetRoleByID(ctx, id)
	return r, notFound(err)
}

// List returns all roles ordered by name.
func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx)
}

func (s *RolesService) Update(ctx context.Context, id string, patch domain.RolePatch) (domain.Role, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Role{}, ErrInvalidInput
	}

	var updated domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		r, err := tx.Roles().GetRoleByID(ctx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(r)
		return tx.Roles().UpdateRole(ctx, updated)
	})
	if err != nil {
		return domain.Role{}, roleWriteError(err)
	}
	return updated, nil
}

func (s *RolesService) Delete(ctx context.Context, id string) error {
	return notFound(s.Store.Roles().DeleteRole(ctx, id))
}

func roleWriteError(err error) error {
	if store.IsConflict(err, store.ConstraintRoleName) {
		return ErrRoleNameTaken
	}
	return notFound(err)
}
