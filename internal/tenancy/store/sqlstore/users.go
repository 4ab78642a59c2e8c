package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type usersRepo repos

const userColumns = `id, tenant_id, email, password_hash, first_name, last_name,
	date_of_birth, gender, profile_picture_url, contact_phone, address,
	created_at, last_login_at, is_active`

// notDeleted restricts a users query to rows that are not soft deleted.
const notDeleted = ` AND deleted_at IS NULL`

func scanUser(s scanner) (domain.User, error) {
	var (
		u                       domain.User
		tenantID, gender, photo sql.NullString
		phone, address          sql.NullString
		dob, lastLogin          sql.NullTime
	)
	err := s.Scan(
		&u.ID, &tenantID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&dob, &gender, &photo, &phone, &address,
		&u.CreatedAt, &lastLogin, &u.IsActive,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.TenantID = tenantID.String
	u.Gender = gender.String
	u.ProfilePictureURL = photo.String
	u.ContactPhone = phone.String
	u.Address = address.String
	u.DateOfBirth = datePtr(dob)
	u.CreatedAt = u.CreatedAt.UTC()
	u.LastLoginAt = timePtr(lastLogin)
	return u, nil
}

func (r usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.q.exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullString(u.TenantID), u.Email, u.PasswordHash, u.FirstName, u.LastName,
		nullTime(u.DateOfBirth), nullString(u.Gender), nullString(u.ProfilePictureURL),
		nullString(u.ContactPhone), nullString(u.Address), u.CreatedAt.UTC(),
		nullTime(u.LastLoginAt), u.IsActive,
	)
	return wrap("create user", err)
}

func (r usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`+notDeleted, id))
	return u, wrap("get user", r.q.mapScan(err))
}

func (r usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`+notDeleted, email))
	return u, wrap("get user by email", r.q.mapScan(err))
}

func (r usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.query(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("list users", err)
	}
	users, err := collect(r.q, rows, scanUser)
	return users, wrap("list users", err)
}

func (r usersRepo) UpdateUser(ctx context.Context, u domain.User) error {
	err := r.q.execOne(ctx, `
		UPDATE users
		SET email = ?, first_name = ?, last_name = ?, date_of_birth = ?, gender = ?,
			profile_picture_url = ?, contact_phone = ?, address = ?
		WHERE id = ?`+notDeleted,
		u.Email, u.FirstName, u.LastName, nullTime(u.DateOfBirth), nullString(u.Gender),
		nullString(u.ProfilePictureURL), nullString(u.ContactPhone), nullString(u.Address), u.ID,
	)
	return wrap("update user", err)
}

func (r usersRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	err := r.q.execOne(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`+notDeleted, at.UTC(), id)
	return wrap("touch last login", err)
}

func (r usersRepo) DeleteUser(ctx context.Context, id string, at time.Time) error {
	err := r.q.execOne(ctx,
		`UPDATE users SET deleted_at = ?, is_active = ? WHERE id = ?`+notDeleted,
		at.UTC(), false, id,
	)
	return wrap("delete user", err)
}
