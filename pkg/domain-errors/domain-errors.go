package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodePolicyViolation    Code = "policy_violation"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"

	// Vaccination registry outcomes. Each has a stable reason string that
	// callers match on verbatim (see the Reason* constants).
	CodeDuplicateCenter          Code = "duplicate_center"
	CodeCenterNotRegistered      Code = "center_not_registered"
	CodeCenterAddressMismatch    Code = "center_address_mismatch"
	CodeVaccinationNotRegistered Code = "vaccination_not_registered"
	CodePersonMismatch           Code = "person_mismatch"
	CodeVaccineNotAccepted       Code = "vaccine_not_accepted"
	CodeVaccinationTooOld        Code = "vaccination_too_old"
)

// Stable, human-readable reasons carried by vaccination registry errors.
const (
	ReasonDuplicateCenter          = "Center is already registered"
	ReasonCenterNotRegistered      = "Validated center is not registered"
	ReasonCenterAddressMismatch    = "Registered center's address is different from the passed address"
	ReasonVaccinationNotRegistered = "Vaccination is not registered"
	ReasonPersonMismatch           = "Vaccinated person mismatch is detected"
	ReasonVaccineNotAccepted       = "The used vaccine is not accepted in the area"
	ReasonVaccinationTooOld        = "Vaccination time is too far in the past"
)

// Category groups codes into the error taxonomy reported to callers.
type Category string

const (
	CategoryAuthorization    Category = "authorization"
	CategoryNotFound         Category = "not_found"
	CategoryPolicy           Category = "policy"
	CategoryIdentityMismatch Category = "identity_mismatch"
	CategoryInput            Category = "input"
	CategoryConflict         Category = "conflict"
	CategoryInternal         Category = "internal"
)

// CategoryOf returns the taxonomy bucket for a code.
func CategoryOf(code Code) Category {
	switch code {
	case CodeCenterAddressMismatch, CodeUnauthorized, CodeForbidden:
		return CategoryAuthorization
	case CodeNotFound, CodeCenterNotRegistered, CodeVaccinationNotRegistered:
		return CategoryNotFound
	case CodeVaccineNotAccepted, CodeVaccinationTooOld, CodePolicyViolation:
		return CategoryPolicy
	case CodePersonMismatch:
		return CategoryIdentityMismatch
	case CodeBadRequest, CodeInvalidInput, CodeValidation, CodeInvariantViolation:
		return CategoryInput
	case CodeConflict, CodeDuplicateCenter:
		return CategoryConflict
	default:
		return CategoryInternal
	}
}

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the domain code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Sentinel-style domain errors for the vaccination registry. errors.Is
// matches by code, so wrapped variants still compare equal.
var (
	ErrDuplicateCenter          = New(CodeDuplicateCenter, ReasonDuplicateCenter)
	ErrCenterNotRegistered      = New(CodeCenterNotRegistered, ReasonCenterNotRegistered)
	ErrCenterAddressMismatch    = New(CodeCenterAddressMismatch, ReasonCenterAddressMismatch)
	ErrVaccinationNotRegistered = New(CodeVaccinationNotRegistered, ReasonVaccinationNotRegistered)
	ErrPersonMismatch           = New(CodePersonMismatch, ReasonPersonMismatch)
	ErrVaccineNotAccepted       = New(CodeVaccineNotAccepted, ReasonVaccineNotAccepted)
	ErrVaccinationTooOld        = New(CodeVaccinationTooOld, ReasonVaccinationTooOld)
)
