package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/recipetalk/v1/internal/ports/outbound"
	apperrors "github.com/recipetalk/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{BaseURL: srv.URL, Model: "test-model", Timeout: 2 * time.Second}, zap.NewNop())
	return srv, client
}

func TestCompleteSuccess(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(generateResponse{
			Model:    "test-model",
			Response: "  {\"intent\": \"recipe_list\"}  ",
			Done:     true,
		})
	})

	result, err := client.Complete(context.Background(), "classify", outbound.CompletionOptions{Temperature: 0.1, MaxTokens: 100})

	require.NoError(t, err)
	assert.Equal(t, `{"intent": "recipe_list"}`, result)
}

func TestCompleteServerErrorMapsToUnavailable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), "classify", outbound.CompletionOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeProviderUnavailable))
}

func TestCompleteMalformedEnvelope(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Complete(context.Background(), "classify", outbound.CompletionOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeMalformedResponse))
}

func TestCompleteIncompleteResponse(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "partial", Done: false})
	})

	_, err := client.Complete(context.Background(), "classify", outbound.CompletionOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeMalformedResponse))
}

func TestCompleteUnreachableProvider(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond}, zap.NewNop())

	_, err := client.Complete(context.Background(), "classify", outbound.CompletionOptions{})

	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestHealthCheckFailure(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.HealthCheck(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeProviderUnavailable))
}
