package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/models"
)

const completionBody = `{
	"id":"chatcmpl-1",
	"object":"chat.completion",
	"created":1730366400,
	"model":"gpt-4o",
	"choices":[
		{
			"index":0,
			"finish_reason":"stop",
			"message":{"role":"assistant","content":"  Decision: Hold\nReasoning: range bound  "}
		}
	],
	"usage":{"prompt_tokens":120,"completion_tokens":30,"total_tokens":150}
}`

type recorder struct {
	mu     sync.Mutex
	calls  int
	path   string
	header http.Header
	body   []byte
}

func newServer(t *testing.T, rec *recorder, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.calls++
		rec.path = r.URL.Path
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func openAIConfig(endpoint string) *config.LLMConfig {
	return &config.LLMConfig{
		Provider: config.ProviderOpenAI,
		APIKey:   "sk-test",
		Endpoint: endpoint,
		Model:    "gpt-4o",
		Timeout:  5 * time.Second,
	}
}

func TestCompleteOpenAI(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, http.StatusOK, completionBody)

	client := NewClient(openAIConfig(server.URL+"/v1"), WithHTTPClient(server.Client()))
	text, err := client.Complete(context.Background(), "analyse BTC-USD")
	require.NoError(t, err)
	require.Equal(t, "Decision: Hold\nReasoning: range bound", text)

	require.Equal(t, 1, rec.calls)
	require.Equal(t, "/v1/chat/completions", rec.path)
	require.Equal(t, "Bearer sk-test", rec.header.Get("Authorization"))

	var payload struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.body, &payload))
	require.Equal(t, "gpt-4o", payload.Model)
	require.Len(t, payload.Messages, 1)
	require.Equal(t, "user", payload.Messages[0].Role)
	require.Equal(t, "analyse BTC-USD", payload.Messages[0].Content)
}

func TestCompleteAzure(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, http.StatusOK, completionBody)

	cfg := &config.LLMConfig{
		Provider:   config.ProviderAzure,
		APIKey:     "azure-key",
		Endpoint:   server.URL,
		APIVersion: "2024-06-01",
		Model:      "gpt-4o",
	}
	client := NewClient(cfg, WithHTTPClient(server.Client()))
	_, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	require.Equal(t, "/openai/deployments/gpt-4o/chat/completions", rec.path)
	require.Equal(t, "azure-key", rec.header.Get("api-key"))
}

func TestCompleteMissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.LLMConfig
	}{
		{"nil config", nil},
		{"no key", &config.LLMConfig{Provider: config.ProviderOpenAI}},
		{"azure without endpoint", &config.LLMConfig{Provider: config.ProviderAzure, APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg).Complete(context.Background(), "prompt")
			var remote *models.RemoteServiceError
			require.True(t, errors.As(err, &remote))
			require.ErrorIs(t, err, ErrMissingCredentials)
		})
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, http.StatusOK, `{"id":"x","object":"chat.completion","model":"gpt-4o","choices":[]}`)

	client := NewClient(openAIConfig(server.URL+"/v1"), WithHTTPClient(server.Client()))
	_, err := client.Complete(context.Background(), "prompt")

	var remote *models.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	require.Contains(t, err.Error(), "no choices")
}

func TestCompleteUnauthorizedIsNotRetried(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, http.StatusUnauthorized,
		`{"error":{"message":"invalid api key","type":"invalid_request_error","code":"invalid_api_key"}}`)

	client := NewClient(openAIConfig(server.URL+"/v1"),
		WithHTTPClient(server.Client()),
		WithMaxRetries(3),
		WithInitialBackoff(time.Millisecond),
	)
	_, err := client.Complete(context.Background(), "prompt")

	var remote *models.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, http.StatusUnauthorized, remote.StatusCode)
	require.Equal(t, 1, rec.calls)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	rec := &recorder{}
	server := newServer(t, rec, http.StatusServiceUnavailable,
		`{"error":{"message":"overloaded","type":"server_error"}}`)

	client := NewClient(openAIConfig(server.URL+"/v1"),
		WithHTTPClient(server.Client()),
		WithMaxRetries(2),
		WithInitialBackoff(time.Millisecond),
	)
	_, err := client.Complete(context.Background(), "prompt")

	var remote *models.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, http.StatusServiceUnavailable, remote.StatusCode)
	require.Equal(t, 3, rec.calls)
}

func TestCompleteAppliesConfiguredTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	cfg := openAIConfig(server.URL + "/v1")
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, WithHTTPClient(server.Client()), WithMaxRetries(2), WithInitialBackoff(time.Millisecond))

	start := time.Now()
	_, err := client.Complete(context.Background(), "prompt")
	require.Less(t, time.Since(start), 2*time.Second)

	var remote *models.RemoteServiceError
	require.True(t, errors.As(err, &remote))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
