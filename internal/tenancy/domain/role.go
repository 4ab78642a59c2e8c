package domain

import "time"

// Role and Permission are plain records. Nothing in the service evaluates
// them against requests.
type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// RolePatch carries the optional fields of a role update.
type RolePatch struct {
	Name        *string
	Description *string
}

func (p RolePatch) Apply(r Role) Role {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	return r
}

type Permission struct {
	ID          string
	Code        string
	Description string
	CreatedAt   time.Time
}

// PermissionPatch carries the optional fields of a permission update.
type PermissionPatch struct {
	Code        *string
	Description *string
}

func (p PermissionPatch) Apply(perm Permission) Permission {
	if p.Code != nil {
		perm.Code = *p.Code
	}
	if p.Description != nil {
		perm.Description = *p.Description
	}
	return perm
}
