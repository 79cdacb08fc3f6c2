package controllers

// Error codes of JSON error responses ({"error": code, "message": ...})
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeValidation   = "validation_failed"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeUnavailable  = "service_unavailable"
	ErrCodeInternal     = "internal_server_error"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 500

	FormFieldImportFile      = "file"
	FormFieldGenerateMonthly = "generate_monthly"
)
