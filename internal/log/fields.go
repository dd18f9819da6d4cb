package log

// Common field names for structured logging.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldOwnerID      = "owner_id"
	FieldObligationID = "obligation_id"
	FieldTenancyID    = "tenancy_id"
	FieldOperation    = "operation"
	FieldDurationMS   = "duration_ms"
	FieldError        = "error"
)
