package constants

// ============================================================================
// AUTHENTICATION & SESSION ERRORS
// ============================================================================

const (
	ErrMissingUserID  = "user_id is required in the request"
	ErrUserIDRequired = "user_id required"
	ErrInvalidSession = "invalid user_id or session"
	ErrPleaseLogin    = "Please login to continue."
	ErrUnauthorized   = "You are not authorized to perform this action"
)

// ============================================================================
// VALIDATION ERRORS - Areas & Ceilings
// ============================================================================

const (
	ErrNoAccessibleAreas = "No accessible financial areas found for your account"
	ErrAreaRequired      = "a positive financial area id is required"
	ErrAreaUnresolved    = "financial area could not be resolved for this ceiling"
	ErrCeilingRequired   = "a positive ceiling id is required"
	ErrCeilingNotFound   = "budget ceiling not found"
	ErrCeilingReserved   = "ceiling id is reserved and cannot accept requisitions"
	ErrProjectEnsure     = "failed to ensure annual project"
	ErrProjectNotFound   = "annual project not found for this ceiling"
)

// ============================================================================
// VALIDATION ERRORS - Selections & Requisitions
// ============================================================================

const (
	ErrNoSelections      = "at least one product selection is required"
	ErrZeroTotalQuantity = "total requested quantity must be greater than zero"
	ErrInvalidMonth      = "month must be between 1 and 12"
	ErrProductRequired   = "a positive product id is required"
	ErrJustificationText = "justification text is required"
)

// ============================================================================
// REQUEST / TRANSPORT ERRORS
// ============================================================================

const (
	ErrInvalidJSON       = "invalid json or missing fields"
	ErrInvalidJSONPrefix = "invalid json: "
	ErrMethodNotAllowed  = "Method Not Allowed"
	ErrFailedToBeginTx   = "failed to begin transaction"
	ErrTxCommitFailed    = "failed to commit transaction: "
	ErrQueryFailed       = "query failed: "
	ErrDBConnection      = "database connection failed"
)

// ============================================================================
// RESPONSE KEYS & FORMAT HELPERS
// ============================================================================

const (
	ValueSuccess = "success"
	ValueError   = "error"
)

func FormatMissingFieldError(field string) string {
	return field + " is required"
}

func FormatFieldError(field, msg string) string {
	return field + " " + msg
}
