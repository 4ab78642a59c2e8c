package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type rolesRepo repos

func scanRole(s scanner) (domain.Role, error) {
	var (
		r    domain.Role
		desc sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Name, &desc, &r.CreatedAt); err != nil {
		return domain.Role{}, err
	}
	r.Description = desc.String
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func (r rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO roles (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, nullString(role.Description), role.CreatedAt.UTC(),
	)
	return wrap("create role", err)
}

func (r rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	role, err := scanRole(r.q.queryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE id = ?`, id))
	return role, wrap("get role", r.q.mapScan(err))
}

func (r rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.query(ctx, `SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, wrap("list roles", err)
	}
	roles, err := collect(r.q, rows, scanRole)
	return roles, wrap("list roles", err)
}

func (r rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	err := r.q.execOne(ctx,
		`UPDATE roles SET name = ?, description = ? WHERE id = ?`,
		role.Name, nullString(role.Description), role.ID,
	)
	return wrap("update role", err)
}

func (r rolesRepo) DeleteRole(ctx context.Context, id string) error {
	return wrap("delete role", r.q.execOne(ctx, `DELETE FROM roles WHERE id = ?`, id))
}
