package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "vaxledger/pkg/domain-errors"
)

// MaxBodyBytes caps JSON request bodies read by the decode helpers.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON request body into the target type.
// On failure, writes an error response and returns nil, false.
//
// Usage:
//
//	req, ok := httputil.DecodeJSON[RegisterCenterRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	body, ok := readBody(w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	return decodeBytes[T](w, body, logger, ctx, requestID)
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// PrepareRequest normalizes and validates a request.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// RawCheck inspects the raw body before it is decoded, e.g. a JSON Schema.
type RawCheck func(body []byte) error

// DecodeAndPrepare combines JSON decoding with request preparation.
// Optional raw checks run on the undecoded body first.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string, checks ...RawCheck) (*T, bool) {
	body, ok := readBody(w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	for _, check := range checks {
		if err := check(body); err != nil {
			writePrepareError(w, err, logger, ctx, requestID)
			return nil, false
		}
	}

	req, ok := decodeBytes[T](w, body, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		writePrepareError(w, err, logger, ctx, requestID)
		return nil, false
	}

	return req, true
}

func readBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil || len(body) > MaxBodyBytes {
		logger.WarnContext(ctx, "failed to read request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return body, true
}

func decodeBytes[T any](w http.ResponseWriter, body []byte, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.Unmarshal(body, &req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

func writePrepareError(w http.ResponseWriter, err error, logger *slog.Logger, ctx context.Context, requestID string) {
	logger.WarnContext(ctx, "invalid request",
		"error", err,
		"request_id", requestID,
	)
	// Preserve original error code if it's already a domain error
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteError(w, err)
		return
	}
	WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
}
