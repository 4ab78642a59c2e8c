package http

import (
	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
)

// Wire views of the domain types. PasswordHash has no counterpart.

func toUser(u domain.User) authsdk.User {
	var dob string
	if u.DateOfBirth != nil {
		dob = u.DateOfBirth.Format(domain.DateLayout)
	}
	return authsdk.User{
		ID:           u.ID,
		TenantID:     u.TenantID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ContactPhone: u.ContactPhone,
		Address:      u.Address,
		CreatedAt:    u.CreatedAt,
		LastLoginAt:  u.LastLoginAt,
		IsActive:     u.IsActive,

		DateOfBirth:       dob,
		Gender:            u.Gender,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

func toTenant(t domain.Tenant) authsdk.Tenant {
	return authsdk.Tenant{
		ID:           t.ID,
		Name:         t.Name,
		Domain:       t.Domain,
		Address:      t.Address,
		ContactEmail: t.ContactEmail,
		ContactPhone: t.ContactPhone,
		LogoURL:      t.LogoURL,
		Timezone:     t.Timezone,
		CreatedAt:    t.CreatedAt,
		IsActive:     t.IsActive,
	}
}

func toRole(r domain.Role) authsdk.Role {
	return authsdk.Role{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
}

func toPermission(p domain.Permission) authsdk.Permission {
	return authsdk.Permission{ID: p.ID, Code: p.Code, Description: p.Description, CreatedAt: p.CreatedAt}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
