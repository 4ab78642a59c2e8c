package service

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

type PermissionService struct {
	Store store.Store
}

func (s *PermissionService) Create(ctx context.Context, code, description string) (domain.Permission, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Permission{}, ErrInvalidInput
	}

	p := domain.Permission{
		ID:          idx.New().String(),
		Code:        code,
		Description: description,
		CreatedAt:   now(),
	}
	if err := s.Store.Permissions().CreatePermission(ctx, p); err != nil {
		return domain.Permission{}, permissionWriteError(err)
	}
	return p, nil
}

// List returns all permissions ordered by code.
func (s *PermissionService) List(ctx context.Context) ([]domain.Permission, error) {
	return s.Store.Permissions().ListPermissions(ctx)
}

func (s *PermissionService) GetPermissionByID(ctx context.Context, id string) (domain.Permission, error) {
	p, err := s.Store.Permissions().GetPermissionByID(ctx, id)
	return p, notFound(err)
}

func (s *PermissionService) Update(ctx context.Context, id string, patch domain.PermissionPatch) (domain.Permission, error) {
	if patch.Code != nil {
		code := strings.TrimSpace(*patch.Code)
		if code == "" {
			return domain.Permission{}, ErrInvalidInput
		}
		patch.Code = &code
	}

	var updated domain.Permission
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		p, err := tx.Permissions().GetPermissionByID(ctx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(p)
		return tx.Permissions().UpdatePermission(ctx, updated)
	})
	if err != nil {
		return domain.Permission{}, permissionWriteError(err)
	}
	return updated, nil
}

func (s *PermissionService) Delete(ctx context.Context, id string) error {
	return notFound(s.Store.Permissions().DeletePermission(ctx, id))
}

func permissionWriteError(err error) error {
	if store.IsConflict(err, store.ConstraintPermissionCode) {
		return ErrPermissionCodeTaken
	}
	return notFound(err)
}
