package schema

// ProfilesTable represents the 'profiles' table
type ProfilesTable struct {
	Table     string
	ID        string
	UserID    string
	FullName  string
	AvatarURL string
	Phone     string
	Gender    string
	Birthday  string
	Address   string
	CreatedAt string
	UpdatedAt string
}

// Profiles is the schema definition for the profiles table
var Profiles = ProfilesTable{
	Table:     "profiles",
	ID:        "id",
	UserID:    "user_id",
	FullName:  "full_name",
	AvatarURL: "avatar_url",
	Phone:     "phone",
	Gender:    "gender",
	Birthday:  "birthday",
	Address:   "address",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

func (t ProfilesTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.FullName, t.AvatarURL, t.Phone, t.Gender,
		t.Birthday, t.Address, t.CreatedAt, t.UpdatedAt,
	}
}
