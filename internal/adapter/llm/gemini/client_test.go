package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bkyoung/claim-verifier/internal/adapter/llm/gemini"
	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() (config.ProviderConfig, config.HTTPConfig) {
	retries := 2
	backoff := "1ms"
	return config.ProviderConfig{
			MaxRetries:     &retries,
			InitialBackoff: &backoff,
			MaxBackoff:     &backoff,
		}, config.HTTPConfig{
			Timeout:        "5s",
			MaxRetries:     2,
			InitialBackoff: "1ms",
			MaxBackoff:     "1ms",
		}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *gemini.HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	providerCfg, httpCfg := fastRetryConfig()
	client := gemini.NewHTTPClient("test-key", "", providerCfg, httpCfg)
	client.SetBaseURL(server.URL)
	return client
}

func geminiReply(text string) []byte {
	resp := gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{
			{Content: gemini.Content{Parts: []gemini.Part{{Text: text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func TestHTTPClient_FactCheck(t *testing.T) {
	t.Run("successful fact check", func(t *testing.T) {
		var gotBody gemini.GenerateContentRequest
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Contains(t, r.URL.Path, ":generateContent")
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write(geminiReply("VERDICT: True\nCATEGORY: tech\nSUMMARY: Confirmed by several outlets."))
		})

		report, err := client.FactCheck(context.Background(), "Intel reported $4.1 billion profit in Q3 2024")
		require.NoError(t, err)
		assert.Equal(t, "True", report.Verdict)
		assert.Equal(t, "tech", report.Category)
		assert.Equal(t, "Confirmed by several outlets.", report.Summary)

		// The request enables search grounding and embeds the claim.
		require.Len(t, gotBody.Tools, 1)
		assert.NotNil(t, gotBody.Tools[0].GoogleSearch)
		require.Len(t, gotBody.Contents, 1)
		assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "Intel reported $4.1 billion profit")
	})

	t.Run("retries on rate limit then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
				return
			}
			w.Write(geminiReply("VERDICT: False\nSUMMARY: Refuted."))
		})

		report, err := client.FactCheck(context.Background(), "the moon is made of cheese")
		require.NoError(t, err)
		assert.Equal(t, "False", report.Verdict)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("retries on server error", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write(geminiReply("VERDICT: Unproven"))
		})

		report, err := client.FactCheck(context.Background(), "some claim")
		require.NoError(t, err)
		assert.Equal(t, "Unproven", report.Verdict)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("invalid request aborts without retry", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"invalid argument"}}`))
		})

		_, err := client.FactCheck(context.Background(), "some claim")
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())

		var httpErr *llmhttp.Error
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, llmhttp.ErrTypeInvalidRequest, httpErr.Type)
	})

	t.Run("authentication failure aborts", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
		})

		_, err := client.FactCheck(context.Background(), "some claim")
		require.Error(t, err)

		var httpErr *llmhttp.Error
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, llmhttp.ErrTypeAuthentication, httpErr.Type)
	})

	t.Run("empty candidates is malformed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		})

		_, err := client.FactCheck(context.Background(), "some claim")
		require.Error(t, err)

		var httpErr *llmhttp.Error
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, llmhttp.ErrTypeMalformedResponse, httpErr.Type)
	})
}
