package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the JSON error envelope shared by every endpoint.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Category    string `json:"error_category,omitempty"`
}

// WriteError translates transport-agnostic domain errors into HTTP status
// codes and the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorResponse{
			Error:       DomainCodeToHTTPCode(domainErr.Code),
			Description: domainErr.Message,
			Category:    string(dErrors.CategoryOf(domainErr.Code)),
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeCenterNotRegistered, dErrors.CodeVaccinationNotRegistered:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeDuplicateCenter:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeCenterAddressMismatch:
		return http.StatusForbidden
	case dErrors.CodePolicyViolation, dErrors.CodeVaccineNotAccepted, dErrors.CodeVaccinationTooOld:
		return http.StatusPreconditionFailed
	case dErrors.CodePersonMismatch:
		return http.StatusUnprocessableEntity
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to HTTP error codes (for JSON response).
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodePolicyViolation:
		return "policy_violation"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeDuplicateCenter,
		dErrors.CodeCenterNotRegistered,
		dErrors.CodeCenterAddressMismatch,
		dErrors.CodeVaccinationNotRegistered,
		dErrors.CodePersonMismatch,
		dErrors.CodeVaccineNotAccepted,
		dErrors.CodeVaccinationTooOld:
		return string(code)
	default:
		return "internal_error"
	}
}

// RequireCaller extracts the authenticated principal placed in context by
// the auth middleware.
func RequireCaller(ctx context.Context, logger *slog.Logger, requestID string) (id.Address, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		if logger != nil {
			logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
				"request_id", requestID)
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "authenticated caller required")
	}
	return caller, nil
}
