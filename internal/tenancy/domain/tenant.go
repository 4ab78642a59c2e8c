package domain

import "time"

type Tenant struct {
	ID           string
	Name         string
	Domain       string // optional, unique when set
	Address      string
	ContactEmail string
	ContactPhone string
	LogoURL      string
	Timezone     string
	CreatedAt    time.Time
	IsActive     bool
}

// TenantPatch carries the optional fields of a tenant update.
type TenantPatch struct {
	Name         *string
	Domain       *string
	Address      *string
	ContactEmail *string
	ContactPhone *string
	LogoURL      *string
	Timezone     *string
}

func (p TenantPatch) Apply(t Tenant) Tenant {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Domain != nil {
		t.Domain = *p.Domain
	}
	if p.Address != nil {
		t.Address = *p.Address
	}
	if p.ContactEmail != nil {
		t.ContactEmail = *p.ContactEmail
	}
	if p.ContactPhone != nil {
		t.ContactPhone = *p.ContactPhone
	}
	if p.LogoURL != nil {
		t.LogoURL = *p.LogoURL
	}
	if p.Timezone != nil {
		t.Timezone = *p.Timezone
	}
	return t
}
