package schema

// AuditLogsTable represents the 'audit_logs' table
type AuditLogsTable struct {
	Table        string
	ID           string
	Action       string
	Module       string
	Description  string
	UserID       string
	IPAddress    string
	UserAgent    string
	Status       string
	ErrorMessage string
	CreatedAt    string
}

// AuditLogs is the schema definition for the audit_logs table
var AuditLogs = AuditLogsTable{
	Table:        "audit_logs",
	ID:           "id",
	Action:       "action",
	Module:       "module",
	Description:  "description",
	UserID:       "user_id",
	IPAddress:    "ip_address",
	UserAgent:    "user_agent",
	Status:       "status",
	ErrorMessage: "error_message",
	CreatedAt:    "created_at",
}

func (t AuditLogsTable) Columns() []string {
	return []string{
		t.ID, t.Action, t.Module, t.Description, t.UserID, t.IPAddress,
		t.UserAgent, t.Status, t.ErrorMessage, t.CreatedAt,
	}
}
