package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type permissionsRepo repos

func scanPermission(s scanner) (domain.Permission, error) {
	var (
		p    domain.Permission
		desc sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Code, &desc, &p.CreatedAt); err != nil {
		return domain.Permission{}, err
	}
	p.Description = desc.String
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO permissions (id, code, description, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Code, nullString(p.Description), p.CreatedAt.UTC(),
	)
	return wrap("create permission", err)
}

func (r permissionsRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	rows, err := r.q.query(ctx, `SELECT id, code, description, created_at FROM permissions ORDER BY code`)
	if err != nil {
		return nil, wrap("list permissions", err)
	}
	perms, err := collect(r.q, rows, scanPermission)
	return perms, wrap("list permissions", err)
}

func (r permissionsRepo) GetPermissionByID(ctx context.Context, id string) (domain.Permission, error) {
	p, err := scanPermission(r.q.queryRow(ctx,
		`SELECT id, code, description, created_at FROM permissions WHERE id = ?`, id))
	return p, wrap("get permission", r.q.mapScan(err))
}

func (r permissionsRepo) UpdatePermission(ctx context.Context, p domain.Permission) error {
	err := r.q.execOne(ctx,
		`UPDATE permissions SET code = ?, description = ? WHERE id = ?`,
		p.Code, nullString(p.Description), p.ID,
	)
	return wrap("update permission", err)
}

func (r permissionsRepo) DeletePermission(ctx context.Context, id string) error {
	return wrap("delete permission", r.q.execOne(ctx, `DELETE FROM permissions WHERE id = ?`, id))
}
