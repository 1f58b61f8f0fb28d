package schema

// UserRolesTable represents the 'user_roles' join table
type UserRolesTable struct {
	Table  string
	UserID string
	RoleID string
}

// UserRoles is the schema definition for the user_roles join table
var UserRoles = UserRolesTable{
	Table:  "user_roles",
	UserID: "user_id",
	RoleID: "role_id",
}
