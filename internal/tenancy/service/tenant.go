package service

import (
	"context"
	"strings"
	"time"
	_ "time/tzdata" // timezone names validate without a system zoneinfo

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

const defaultTimezone = "UTC"

type TenantService struct {
	Store store.Store
}

type NewTenant struct {
	Name         string
	Domain       string
	Address      string
	ContactEmail string
	ContactPhone string
	LogoURL      string
	Timezone     string
}

// Create stores a new active tenant. Timezone must be an IANA name and
// defaults to UTC.
func (s *TenantService) Create(ctx context.Context, in NewTenant) (domain.Tenant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Tenant{}, ErrInvalidInput
	}

	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return domain.Tenant{}, ErrInvalidInput
	}

	t := domain.Tenant{
		ID:           idx.New().String(),
		Name:         name,
		Domain:       normalizeDomain(in.Domain),
		Address:      in.Address,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		LogoURL:      in.LogoURL,
		Timezone:     tz,
		CreatedAt:    now(),
		IsActive:     true,
	}
	if err := s.Store.Tenants().CreateTenant(ctx, t); err != nil {
		return domain.Tenant{}, tenantWriteError(err)
	}
	return t, nil
}

func (s *TenantService) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	t, err := s.Store.Tenants().GetTenantByID(ctx, id)
	return t, notFound(err)
}

// GetTenantByName returns the oldest tenant carrying name.
func (s *TenantService) GetTenantByName(ctx context.Context, name string) (domain.Tenant, error) {
	t, err := s.Store.Tenants().GetTenantByName(ctx, name)
	return t, notFound(err)
}

func (s *TenantService) GetTenantByDomain(ctx context.Context, dom string) (domain.Tenant, error) {
	t, err := s.Store.Tenants().GetTenantByDomain(ctx, normalizeDomain(dom))
	return t, notFound(err)
}

func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.Store.Tenants().ListTenants(ctx)
}

// Update applies patch under the same rules as Create. An empty domain in
// the patch clears it.
func (s *TenantService) Update(ctx context.Context, id string, patch domain.TenantPatch) (domain.Tenant, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Tenant{}, ErrInvalidInput
		}
		patch.Name = &name
	}
	if patch.Timezone != nil {
		if _, err := time.LoadLocation(*patch.Timezone); err != nil || *patch.Timezone == "" {
			return domain.Tenant{}, ErrInvalidInput
		}
	}
	if patch.Domain != nil {
		dom := normalizeDomain(*patch.Domain)
		patch.Domain = &dom
	}

	var updated domain.Tenant
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.Tenants().GetTenantByID(ctx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(t)
		return tx.Tenants().UpdateTenant(ctx, updated)
	})
	if err != nil {
		return domain.Tenant{}, tenantWriteError(err)
	}
	return updated, nil
}

// Delete removes the tenant. Its users stay, detached from any tenant.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	return notFound(s.Store.Tenants().DeleteTenant(ctx, id))
}

// DeleteByName removes every tenant carrying name.
func (s *TenantService) DeleteByName(ctx context.Context, name string) error {
	return notFound(s.Store.Tenants().DeleteTenantsByName(ctx, name))
}

func (s *TenantService) DeleteByDomain(ctx context.Context, dom string) error {
	return notFound(s.Store.Tenants().DeleteTenantByDomain(ctx, normalizeDomain(dom)))
}

func normalizeDomain(dom string) string {
	return strings.ToLower(strings.TrimSpace(dom))
}

func tenantWriteError(err error) error {
	if store.IsConflict(err, store.ConstraintTenantDomain) {
		return ErrDomainTaken
	}
	return notFound(err)
}
