package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veridian/pkg/domain-errors"
)

func TestDomainCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeAlreadyExists, http.StatusConflict},
		{dErrors.CodeOwnerAlreadyBound, http.StatusConflict},
		{dErrors.CodeForbidden, http.StatusForbidden},
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeUnavailable, http.StatusInternalServerError},
		{dErrors.CodeOutOfRange, http.StatusInternalServerError},
		{dErrors.CodeInternal, http.StatusInternalServerError},
		{dErrors.Code("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, DomainCodeToHTTPStatus(tt.code))
		})
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeNotFound, "DID not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "DID not found", body.Error)
}

func TestWriteErrorHidesUnexpectedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error, "internal details must not leak")
}

type prepReq struct {
	Name string `json:"name"`
}

func (r *prepReq) Normalize() { r.Name = strings.TrimSpace(r.Name) }
func (r *prepReq) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDecodeAndPrepare(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":" alice "}`))
	rec := httptest.NewRecorder()

	req, ok := DecodeAndPrepare[prepReq](rec, r, testLogger(), context.Background(), "req-1")
	require.True(t, ok)
	assert.Equal(t, "alice", req.Name, "Normalize must run before Validate")
}

func TestDecodeAndPrepareRejectsMalformedJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()

	_, ok := DecodeAndPrepare[prepReq](rec, r, testLogger(), context.Background(), "req-1")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeAndPrepareRejectsInvalidRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  "}`))
	rec := httptest.NewRecorder()

	_, ok := DecodeAndPrepare[prepReq](rec, r, testLogger(), context.Background(), "req-1")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "name is required", body.Error)
}
