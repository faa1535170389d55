package constants

// Session and context keys
const (
	SessionCookieName   = "timesheet_session"
	ContextKeyUserID    = "user_id"
	ContextKeyActor     = "actor"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Validation limits
const (
	MinPasswordLength     = 8
	MaxRejectionReasonLen = 1000
)

// Pagination defaults
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Date layouts
const (
	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"
)
