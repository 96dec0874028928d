package log

// Canonical field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldAssetID   = "asset_id"
	FieldContactID = "contact_id"
	FieldOldPhase  = "old_phase"
	FieldNewPhase  = "new_phase"
	FieldAttempt   = "attempt"
	FieldURL       = "url"
)
