package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaxledger/pkg/domain-errors"
)

type areaRequest struct {
	Area string `json:"area"`
}

func (r *areaRequest) Normalize() {
	r.Area = strings.TrimSpace(r.Area)
}

func (r *areaRequest) Validate() error {
	if r.Area == "" {
		return errors.New("area is required")
	}
	return nil
}

type tokenRequest struct {
	Token string `json:"proof_token"`
}

func (r *tokenRequest) Validate() error {
	if r.Token == "" {
		return dErrors.New(dErrors.CodeBadRequest, "proof_token is required")
	}
	return nil
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"area":"Garivas"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[areaRequest](w, req, logger, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "Garivas", result.Area)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{area}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[areaRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeErr(t, w).Error)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		big := `{"area":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[areaRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"area":"  Garivas "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[areaRequest](w, req, logger, ctx, "req-1")
		require.True(t, ok)
		assert.Equal(t, "Garivas", result.Area)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"area":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[areaRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeErr(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Description, "area is required")
	})

	t.Run("domain validation error keeps its code", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[tokenRequest](w, req, logger, ctx, "req-1")
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeErr(t, w).Error)
	})

	t.Run("raw checks run before decoding", func(t *testing.T) {
		called := false
		check := func(body []byte) error {
			called = true
			assert.JSONEq(t, `{"area":"x"}`, string(body))
			return dErrors.New(dErrors.CodeValidation, "schema rejected")
		}
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"area":"x"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[areaRequest](w, req, logger, ctx, "req-1", check)
		assert.False(t, ok)
		assert.True(t, called)
		assert.Equal(t, "schema rejected", decodeErr(t, w).Description)
	})
}
