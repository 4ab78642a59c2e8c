package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type tenantsRepo repos

const tenantColumns = `id, name, domain, address, contact_email, contact_phone,
	logo_url, timezone, created_at, is_active`

func scanTenant(s scanner) (domain.Tenant, error) {
	var (
		t                   domain.Tenant
		dom, phone, logoURL sql.NullString
	)
	err := s.Scan(
		&t.ID, &t.Name, &dom, &t.Address, &t.ContactEmail, &phone,
		&logoURL, &t.Timezone, &t.CreatedAt, &t.IsActive,
	)
	if err != nil {
		return domain.Tenant{}, err
	}

	t.Domain = dom.String
	t.ContactPhone = phone.String
	t.LogoURL = logoURL.String
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, nullString(t.Domain), t.Address, t.ContactEmail, nullString(t.ContactPhone),
		nullString(t.LogoURL), t.Timezone, t.CreatedAt.UTC(), t.IsActive,
	)
	return wrap("create tenant", err)
}

func (r tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	t, err := scanTenant(r.q.queryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
	return t, wrap("get tenant", r.q.mapScan(err))
}

func (r tenantsRepo) GetTenantByName(ctx context.Context, name string) (domain.Tenant, error) {
	t, err := scanTenant(r.q.queryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE name = ? ORDER BY created_at, id LIMIT 1`, name))
	return t, wrap("get tenant by name", r.q.mapScan(err))
}

func (r tenantsRepo) GetTenantByDomain(ctx context.Context, dom string) (domain.Tenant, error) {
	t, err := scanTenant(r.q.queryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE domain = ?`, dom))
	return t, wrap("get tenant by domain", r.q.mapScan(err))
}

func (r tenantsRepo) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.q.query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("list tenants", err)
	}
	tenants, err := collect(r.q, rows, scanTenant)
	return tenants, wrap("list tenants", err)
}

func (r tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) error {
	err := r.q.execOne(ctx, `
		UPDATE tenants
		SET name = ?, domain = ?, address = ?, contact_email = ?, contact_phone = ?,
			logo_url = ?, timezone = ?
		WHERE id = ?`,
		t.Name, nullString(t.Domain), t.Address, t.ContactEmail, nullString(t.ContactPhone),
		nullString(t.LogoURL), t.Timezone, t.ID,
	)
	return wrap("update tenant", err)
}

func (r tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	return wrap("delete tenant", r.q.execOne(ctx, `DELETE FROM tenants WHERE id = ?`, id))
}

func (r tenantsRepo) DeleteTenantsByName(ctx context.Context, name string) error {
	return wrap("delete tenants by name", r.q.execOne(ctx, `DELETE FROM tenants WHERE name = ?`, name))
}

func (r tenantsRepo) DeleteTenantByDomain(ctx context.Context, dom string) error {
	return wrap("delete tenant by domain", r.q.execOne(ctx, `DELETE FROM tenants WHERE domain = ?`, dom))
}
