package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/claim-verifier/internal/adapter/httpapi"
	"github.com/bkyoung/claim-verifier/internal/adapter/store/sqlite"
	"github.com/bkyoung/claim-verifier/internal/config"
	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/bkyoung/claim-verifier/internal/usecase/ingest"
)

type mockVerifier struct {
	verifyFunc func(ctx context.Context, claim domain.Claim) (domain.VerificationResult, error)
	lastClaim  domain.Claim
}

func (m *mockVerifier) Verify(ctx context.Context, claim domain.Claim) (domain.VerificationResult, error) {
	m.lastClaim = claim
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, claim)
	}
	return domain.VerificationResult{
		ID:                "result-1",
		Verdict:           domain.VerdictTrue,
		AuthenticityScore: 0.85,
		Explanation:       "Confirmed by multiple sources.",
		Category:          "business",
		CreatedAt:         time.Now().UTC(),
	}, nil
}

type mockIngester struct {
	ingestFunc func(ctx context.Context, req ingest.Request) (ingest.Document, error)
}

func (m *mockIngester) Ingest(ctx context.Context, req ingest.Request) (ingest.Document, error) {
	return m.ingestFunc(ctx, req)
}

type mockImageChecker struct {
	checkURLFunc    func(ctx context.Context, imageURL string) domain.ImageVerificationResult
	checkBase64Func func(ctx context.Context, imageBase64 string) domain.ImageVerificationResult
}

func (m *mockImageChecker) CheckURL(ctx context.Context, imageURL string) domain.ImageVerificationResult {
	return m.checkURLFunc(ctx, imageURL)
}

func (m *mockImageChecker) CheckBase64(ctx context.Context, imageBase64 string) domain.ImageVerificationResult {
	return m.checkBase64Func(ctx, imageBase64)
}

type mockHistory struct {
	saved      []string
	saveErr    error
	recentFunc func(ctx context.Context, limit int) ([]sqlite.Record, error)
}

func (m *mockHistory) SaveVerification(ctx context.Context, claimText string, result domain.VerificationResult) error {
	m.saved = append(m.saved, claimText)
	return m.saveErr
}

func (m *mockHistory) RecentVerifications(ctx context.Context, limit int) ([]sqlite.Record, error) {
	return m.recentFunc(ctx, limit)
}

type mockLogger struct {
	warnings []string
}

func (m *mockLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	m.warnings = append(m.warnings, message)
}

func (m *mockLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {}

type serverDeps struct {
	verifier *mockVerifier
	ingester *mockIngester
	images   *mockImageChecker
	history  *mockHistory
	logger   *mockLogger
}

func newTestServer(t *testing.T, deps serverDeps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var history httpapi.HistoryStore
	if deps.history != nil {
		history = deps.history
	}

	return httpapi.New(config.ServerConfig{}, deps.verifier, deps.ingester, deps.images, history, deps.logger)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := newTestServer(t, serverDeps{logger: &mockLogger{}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestVerifyClaim_Success(t *testing.T) {
	verifier := &mockVerifier{}
	history := &mockHistory{}
	r := newTestServer(t, serverDeps{verifier: verifier, history: history, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/verify-claim", `{"text": "Intel reported $4.1 billion profit in Q3 2024"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.VerificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, domain.VerdictTrue, result.Verdict)
	assert.Equal(t, 0.85, result.AuthenticityScore)

	// Entities are extracted before the pipeline runs
	assert.Contains(t, verifier.lastClaim.Entities, "Intel")

	// Result was saved to history
	require.Len(t, history.saved, 1)
	assert.Equal(t, "Intel reported $4.1 billion profit in Q3 2024", history.saved[0])
}

func TestVerifyClaim_MissingText(t *testing.T) {
	r := newTestServer(t, serverDeps{verifier: &mockVerifier{}, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/verify-claim", `{"text": "   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text is required")
}

func TestVerifyClaim_InvalidBody(t *testing.T) {
	r := newTestServer(t, serverDeps{verifier: &mockVerifier{}, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/verify-claim", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestVerifyClaim_HistorySaveFailureDoesNotFailRequest(t *testing.T) {
	logger := &mockLogger{}
	history := &mockHistory{saveErr: fmt.Errorf("disk full")}
	r := newTestServer(t, serverDeps{verifier: &mockVerifier{}, history: history, logger: logger})

	w := postJSON(t, r, "/api/v1/verify-claim", `{"text": "some claim"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "history")
}

func TestIngestDocument_Success(t *testing.T) {
	ingester := &mockIngester{
		ingestFunc: func(ctx context.Context, req ingest.Request) (ingest.Document, error) {
			return ingest.Document{
				RawText: req.Text,
				Claims: []domain.Claim{
					{Text: "Intel reported $4.1 billion profit", Entities: []string{"Intel"}},
				},
			}, nil
		},
	}
	r := newTestServer(t, serverDeps{ingester: ingester, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/ingest/document", `{"text": "Intel reported $4.1 billion profit in Q3 2024."}`)

	require.Equal(t, http.StatusOK, w.Code)

	var doc ingest.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Claims, 1)
	assert.Equal(t, "Intel reported $4.1 billion profit", doc.Claims[0].Text)
}

func TestIngestDocument_NoInput(t *testing.T) {
	ingester := &mockIngester{
		ingestFunc: func(ctx context.Context, req ingest.Request) (ingest.Document, error) {
			return ingest.Document{}, ingest.ErrNoInput
		},
	}
	r := newTestServer(t, serverDeps{ingester: ingester, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/ingest/document", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestVerifyImage_URL(t *testing.T) {
	images := &mockImageChecker{
		checkURLFunc: func(ctx context.Context, imageURL string) domain.ImageVerificationResult {
			score := 0.95
			tampered := true
			return domain.ImageVerificationResult{
				Provider:       domain.ProviderForensicsAPI,
				IsTampered:     &tampered,
				TamperingScore: &score,
				Reasons:        []string{"highly confident the image is AI-generated"},
			}
		},
	}
	r := newTestServer(t, serverDeps{images: images, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/ingest/image-verify", `{"imageUrl": "https://example.com/photo.jpg"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.ImageVerificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.IsTampered)
	assert.True(t, *result.IsTampered)
}

func TestVerifyImage_DegradationStays200(t *testing.T) {
	images := &mockImageChecker{
		checkBase64Func: func(ctx context.Context, imageBase64 string) domain.ImageVerificationResult {
			return domain.ImageVerificationResult{
				Provider: domain.ProviderHeuristic,
				Reasons:  []string{"image verification unavailable: provider error"},
			}
		},
	}
	r := newTestServer(t, serverDeps{images: images, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/ingest/image-verify", `{"imageBase64": "aGVsbG8="}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestVerifyImage_MissingInput(t *testing.T) {
	r := newTestServer(t, serverDeps{images: &mockImageChecker{}, logger: &mockLogger{}})

	w := postJSON(t, r, "/api/v1/ingest/image-verify", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "imageUrl or imageBase64 is required")
}

func TestHistory_DefaultLimit(t *testing.T) {
	var gotLimit int
	history := &mockHistory{
		recentFunc: func(ctx context.Context, limit int) ([]sqlite.Record, error) {
			gotLimit = limit
			return []sqlite.Record{{ID: "result-1", ClaimText: "some claim"}}, nil
		},
	}
	r := newTestServer(t, serverDeps{history: history, logger: &mockLogger{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)
	assert.Contains(t, w.Body.String(), "result-1")
}

func TestHistory_ExplicitLimit(t *testing.T) {
	var gotLimit int
	history := &mockHistory{
		recentFunc: func(ctx context.Context, limit int) ([]sqlite.Record, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	r := newTestServer(t, serverDeps{history: history, logger: &mockLogger{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gotLimit)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestHistory_InvalidLimit(t *testing.T) {
	r := newTestServer(t, serverDeps{history: &mockHistory{}, logger: &mockLogger{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory_StoreDisabled(t *testing.T) {
	r := newTestServer(t, serverDeps{logger: &mockLogger{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}
