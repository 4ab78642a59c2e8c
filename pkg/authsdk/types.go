package authsdk

import "time"

// ============================================================================
// Session Types
// ============================================================================

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries both tokens of a fresh session.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest is the body of POST /refresh_token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the new access token. The refresh token is not
// rotated.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// LogoutRequest is the body of POST /logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutMessage is the JSON string body of a successful logout.
const LogoutMessage = "Logged out successfully"

// ============================================================================
// Directory Types
// ============================================================================

// User is the public view of a user. The password hash is never sent.
type User struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id,omitempty"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	ContactPhone string     `json:"contact_phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	IsActive     bool       `json:"is_active"`

	// DateOfBirth is YYYY-MM-DD.
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	Gender            string `json:"gender,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// CreateUserRequest is the body of POST /users. Password is plain text and
// hashed by the server.
type CreateUserRequest struct {
	TenantID     string `json:"tenant_id,omitempty"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Address      string `json:"address,omitempty"`

	DateOfBirth       string `json:"date_of_birth,omitempty"`
	Gender            string `json:"gender,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Omitted fields are left
// as they are.
type UpdateUserRequest struct {
	Email        *string `json:"email,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`

	DateOfBirth       *string `json:"date_of_birth,omitempty"`
	Gender            *string `json:"gender,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Domain       string    `json:"domain,omitempty"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     bool      `json:"is_active"`
}

type CreateTenantRequest struct {
	Name         string `json:"name"`
	Domain       string `json:"domain,omitempty"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

// UpdateTenantRequest is the body of PUT /tenants/{id}. An empty Domain
// detaches the tenant from its domain.
type UpdateTenantRequest struct {
	Name         *string `json:"name,omitempty"`
	Domain       *string `json:"domain,omitempty"`
	Address      *string `json:"address,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
}

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Permission struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreatePermissionRequest struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

type UpdatePermissionRequest struct {
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	Version string `json:"version,omitempty"`

	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency /readyz checks.
type HealthChecks struct {
	Database string `json:"database"`
}
