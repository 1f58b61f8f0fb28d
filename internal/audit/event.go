package audit

import "time"

// Event statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Well-known actions recorded by the authentication flow.
const (
	ActionLogin    = "LOGIN"
	ActionRegister = "REGISTER"
	ActionRefresh  = "REFRESH"
)

// Event is a single immutable audit record.
//
// ActorID is nil when the action could not be attributed to an account,
// e.g. a failed login against an unknown username.
type Event struct {
	ID           int64     `json:"id"`
	Action       string    `json:"action"`
	Module       string    `json:"module"`
	Description  string    `json:"description"`
	ActorID      *int64    `json:"user_id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter holds the parameters for a paginated event search.
type Filter struct {
	Module  string
	Action  string
	Status  string
	ActorID *int64
	From    *time.Time
	To      *time.Time
}

// Statistics aggregates events over an optional time window.
type Statistics struct {
	Total    int64            `json:"total"`
	Success  int64            `json:"success"`
	Failed   int64            `json:"failed"`
	ByModule map[string]int64 `json:"by_module"`
	ByAction map[string]int64 `json:"by_action"`
}

// DailyCount is one day's event volume, used for trend charts.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Field names for validation
const (
	FieldAction = "action"
	FieldModule = "module"
	FieldStatus = "status"
)
