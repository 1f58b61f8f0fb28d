package users

import "time"

// User represents a managed account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	Roles        []string   `json:"roles"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Filter holds the parameters for a paginated user search.
type Filter struct {
	Query    string // ILIKE search against username and email
	Role     string // Only users holding this role
	IsActive *bool
}

// Field names for validation
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRoleIDs  = "role_ids"
)
