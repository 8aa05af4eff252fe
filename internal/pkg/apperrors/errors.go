package apperrors

import "errors"

// Ledger error taxonomy. Every state-changing operation surfaces exactly one of
// these (possibly wrapped) and rolls back all of its mutations.
var (
	// Input errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Precondition errors on existing records
	ErrStateConflict = errors.New("state conflict")

	// Payment errors
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrTransferFailed      = errors.New("transfer failed")

	// Arithmetic errors
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// AuthN/AuthZ errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
	ErrPermissionDenied   = errors.New("permission denied")

	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Ledger availability
	ErrLedgerPaused = errors.New("ledger is paused")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Catalog errors
var (
	ErrOfferingNotFound = errors.New("offering not found")
	ErrOfferingInactive = errors.New("offering is not active")
)

// License ledger errors
var (
	ErrLicenseNotFound   = errors.New("license not found")
	ErrLicenseNotExpired = errors.New("existing license has not expired")
	ErrInvalidPeriods    = errors.New("period count out of range")
)

// Progress ledger errors
var (
	ErrLicenseInvalid       = errors.New("no valid license for offering")
	ErrUnitIndexOutOfRange  = errors.New("unit index out of range")
	ErrUnitAlreadyCompleted = errors.New("unit already completed")
)

// Credential ledger errors
var (
	ErrCredentialNotFound    = errors.New("credential not found")
	ErrOfferingNotCompleted  = errors.New("offering not completed")
	ErrOfferingAlreadyEarned = errors.New("offering already present in credential")
	ErrCommitmentAlreadyUsed = errors.New("payment commitment already used")
	ErrEmptyCommitment       = errors.New("payment commitment is empty")
	ErrDisplayNameInvalid    = errors.New("invalid display name")
	ErrPriceOutOfRange       = errors.New("price out of range")
	ErrAccountNotFound       = errors.New("account not found")
	ErrInsufficientBalance   = errors.New("insufficient account balance")
	ErrCredentialNotOwned    = errors.New("credential belongs to another learner")
)

// NewNotFoundError creates a new custom error for resource not found with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewStateConflictError creates a new custom error for violated preconditions with a message
func NewStateConflictError(message string) error {
	return &CustomError{
		Err:     ErrStateConflict,
		Message: message,
	}
}

// NewValidationError creates a new custom error for malformed input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
