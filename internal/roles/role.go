package roles

import "time"

// Role is a named grant referenced by the authorization chain.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reserved roles that ship with the system and cannot be deleted.
var Reserved = []string{"admin", "manager", "user"}

// IsReserved reports whether the role name is one of the built-ins.
func IsReserved(name string) bool {
	for _, reserved := range Reserved {
		if name == reserved {
			return true
		}
	}
	return false
}

// Field names for validation
const (
	FieldName        = "name"
	FieldDescription = "description"
)
