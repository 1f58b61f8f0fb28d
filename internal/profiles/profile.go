package profiles

import "time"

// Profile holds the optional personal details attached to a user account.
// Every field except the owning user is nullable; a profile row is created
// lazily on first update.
type Profile struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	FullName  *string   `json:"full_name"`
	AvatarURL *string   `json:"avatar_url"`
	Phone     *string   `json:"phone"`
	Gender    *string   `json:"gender"`
	Birthday  *string   `json:"birthday"` // YYYY-MM-DD
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Allowed gender values.
var Genders = []string{"male", "female", "other"}

// Field names for validation
const (
	FieldFullName  = "full_name"
	FieldAvatarURL = "avatar_url"
	FieldPhone     = "phone"
	FieldGender    = "gender"
	FieldBirthday  = "birthday"
	FieldAddress   = "address"
)
