package domain

import "time"

// DateLayout is the wire and storage format of DateOfBirth.
const DateLayout = "2006-01-02"

type User struct {
	ID                string
	TenantID          string // empty when the user belongs to no tenant
	Email             string
	PasswordHash      string // bcrypt or argon2id encoded
	FirstName         string
	LastName          string
	DateOfBirth       *time.Time // date only, UTC midnight
	Gender            string
	ProfilePictureURL string
	ContactPhone      string
	Address           string
	CreatedAt         time.Time
	LastLoginAt       *time.Time
	IsActive          bool
}

// UserPatch carries the optional fields of a user update. Nil leaves the
// stored value untouched.
type UserPatch struct {
	Email             *string
	FirstName         *string
	LastName          *string
	DateOfBirth       *time.Time
	Gender            *string
	ProfilePictureURL *string
	ContactPhone      *string
	Address           *string
}

// Apply returns u with the non-nil fields of p written over it.
func (p UserPatch) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		u.DateOfBirth = &dob
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.ProfilePictureURL != nil {
		u.ProfilePictureURL = *p.ProfilePictureURL
	}
	if p.ContactPhone != nil {
		u.ContactPhone = *p.ContactPhone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	return u
}

// ParseDate parses a YYYY-MM-DD date of birth.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
