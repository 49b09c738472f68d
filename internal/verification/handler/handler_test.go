package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridian/internal/platform/metrics"
	"veridian/internal/proof"
	"veridian/internal/verification/service"
	"veridian/internal/verification/store"
	"veridian/pkg/platform/audit/publisher"
	auditmem "veridian/pkg/platform/audit/store/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	proofs := proof.NewService(
		proof.NewMockGenerator(),
		proof.NewStructuralVerifier(),
		proof.NewCircuitRegistry([]string{
			proof.CircuitAgeVerification,
			proof.CircuitCredentialOwnership,
			proof.CircuitSelectiveDisclosure,
		}),
	)
	svc := service.New(
		store.NewMemory(),
		proofs.Circuits(),
		proof.NewStructuralVerifier(),
		nil,
		publisher.New(auditmem.New()),
		metrics.NewWith(prometheus.NewRegistry()),
		logger,
	)

	r := chi.NewRouter()
	New(svc, proofs, logger).Register(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func generateProof(t *testing.T, router http.Handler) map[string]any {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/verification/age", map[string]any{
		"age":    25,
		"minAge": 18,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["proof"].(map[string]any)
}

func submitBody(requestID string, proofBlob map[string]any) map[string]any {
	return map[string]any{
		"requestId":    requestID,
		"credentialId": "cred_001",
		"circuitType":  "age_verification",
		"proofData":    proofBlob,
		"publicInputs": []any{18},
	}
}

func TestSubmitEndpoint(t *testing.T) {
	router := newTestRouter(t)
	blob := generateProof(t, router)

	rec := doJSON(t, router, http.MethodPost, "/verification/request", submitBody("req_001", blob))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req_001", body["requestId"])
	assert.Equal(t, "pending", body["status"])
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, body["txHash"])

	rec = doJSON(t, router, http.MethodPost, "/verification/request", submitBody("req_001", blob))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitValidation(t *testing.T) {
	router := newTestRouter(t)
	blob := generateProof(t, router)

	body := submitBody("req_001", blob)
	delete(body, "credentialId")
	rec := doJSON(t, router, http.MethodPost, "/verification/request", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = submitBody("req_002", blob)
	body["circuitType"] = "quantum_oracle"
	rec = doJSON(t, router, http.MethodPost, "/verification/request", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRequestEndpoint(t *testing.T) {
	router := newTestRouter(t)
	blob := generateProof(t, router)

	rec := doJSON(t, router, http.MethodPost, "/verification/request", submitBody("req_001", blob))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/verification/req_001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	request := body["verificationRequest"].(map[string]any)
	assert.Equal(t, "verified", request["status"], "inline resolution completes before the response")
	assert.Equal(t, "did:example:verifier", request["verifierDID"])
	assert.NotEmpty(t, request["verifiedAt"])

	rec = doJSON(t, router, http.MethodGet, "/verification/req_ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEndpoint(t *testing.T) {
	router := newTestRouter(t)
	blob := generateProof(t, router)

	for _, requestID := range []string{"req_001", "req_002", "req_003"} {
		rec := doJSON(t, router, http.MethodPost, "/verification/request", submitBody(requestID, blob))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/verification/requests?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	requests := body["requests"].([]any)
	require.Len(t, requests, 1)
	assert.Equal(t, "req_003", requests[0].(map[string]any)["requestId"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(3), pagination["total"])
	assert.Equal(t, float64(2), pagination["pages"])
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	blob := generateProof(t, router)

	rec := doJSON(t, router, http.MethodPost, "/verification/request", submitBody("req_001", blob))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/verification/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["totalVerificationRequests"])
	assert.Equal(t, float64(1), stats["zkpCacheSize"])
}

func TestGenerateProofEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/verification/generate-proof", map[string]any{
		"credentialType":     "age_verification",
		"credentialData":     map[string]any{"age": 30},
		"verificationParams": map[string]any{"minAge": 21},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "age_verification", body["credentialType"])
	assert.NotEmpty(t, body["generatedAt"])

	rec = doJSON(t, router, http.MethodPost, "/verification/generate-proof", map[string]any{
		"credentialType":     "unknown_type",
		"credentialData":     map[string]any{},
		"verificationParams": map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTypedProofEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/verification/age", map[string]any{"age": 25, "minAge": 18})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "age_verification", decodeBody(t, rec)["verificationType"])

	rec = doJSON(t, router, http.MethodPost, "/verification/age", map[string]any{"age": 25})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/verification/credential-ownership", map[string]any{
		"credentialHash":  "0xdeadbeef",
		"holderPublicKey": "0xcafef00d",
		"expectedHash":    "0xdeadbeef",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "credential_ownership", decodeBody(t, rec)["verificationType"])

	rec = doJSON(t, router, http.MethodPost, "/verification/selective-disclosure", map[string]any{
		"credentialAttributes": []any{"name", "age", "country"},
		"attributeIndex":       1,
		"expectedValue":        "age",
		"threshold":            0.5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "selective_disclosure", decodeBody(t, rec)["verificationType"])

	rec = doJSON(t, router, http.MethodPost, "/verification/selective-disclosure", map[string]any{
		"credentialAttributes": []any{"name"},
		"attributeIndex":       5,
		"expectedValue":        "x",
		"threshold":            0.5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyProofEndpoint(t *testing.T) {
	router := newTestRouter(t)
	blob := generateProof(t, router)

	rec := doJSON(t, router, http.MethodPost, "/verification/verify-proof", map[string]any{
		"proof":        blob,
		"publicInputs": []any{18},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["isValid"])

	rec = doJSON(t, router, http.MethodPost, "/verification/verify-proof", map[string]any{
		"proof":        map[string]any{"proof": map[string]any{}},
		"publicInputs": []any{18},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["isValid"])
}
