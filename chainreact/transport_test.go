package chainreact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *HTTPTransport {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport, err := NewHTTPTransport(Config{APIKey: "test-key", BaseURL: server.URL + "/"}, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return transport
}

func TestNewHTTPTransport(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantURL string
		wantErr string
	}{
		{
			name:    "default base URL",
			cfg:     Config{APIKey: "k"},
			wantURL: DefaultBaseURL,
		},
		{
			name:    "trailing slashes trimmed",
			cfg:     Config{APIKey: "k", BaseURL: "http://localhost:3000//"},
			wantURL: "http://localhost:3000",
		},
		{
			name:    "missing API key",
			cfg:     Config{BaseURL: "http://localhost:3000"},
			wantErr: "API key is required",
		},
		{
			name:    "invalid base URL",
			cfg:     Config{APIKey: "k", BaseURL: "not a url"},
			wantErr: "base_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := NewHTTPTransport(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, transport.BaseURL())
		})
	}
}

func TestHTTPTransportRequest(t *testing.T) {
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/things", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"x"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"1"}}`))
	})

	body, err := transport.Do(context.Background(), http.MethodPost, "/api/v1/things",
		url.Values{"page": {"2"}}, map[string]any{"name": "x"})
	require.NoError(t, err)

	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, body.Decode("data", &data))
	assert.Equal(t, "1", data.ID)
}

func TestHTTPTransportContentTypeWithoutBody(t *testing.T) {
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, int64(0), r.ContentLength)
		w.WriteHeader(http.StatusNoContent)
	})

	body, err := transport.Do(context.Background(), http.MethodDelete, "/api/v1/things/1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestHTTPTransportHTTPErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "error field",
			status:      http.StatusNotFound,
			body:        `{"error": "workflow not found"}`,
			wantMessage: "workflow not found",
		},
		{
			name:        "non-JSON body",
			status:      http.StatusInternalServerError,
			body:        `<html>upstream exploded</html>`,
			wantMessage: "500 Internal Server Error",
		},
		{
			name:        "JSON without error field",
			status:      http.StatusUnprocessableEntity,
			body:        `{"message": "bad"}`,
			wantMessage: "422 Unprocessable Entity",
		},
		{
			name:        "structured error field",
			status:      http.StatusBadRequest,
			body:        `{"error": {"field": "name"}}`,
			wantMessage: `{"field": "name"}`,
		},
		{
			name:        "empty body",
			status:      http.StatusUnauthorized,
			body:        ``,
			wantMessage: "401 Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := transport.Do(context.Background(), http.MethodGet, "/api/v1/workflows/x", nil, nil)
			require.Error(t, err)

			apiErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, KindHTTP, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.True(t, apiErr.HasStatus())
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Equal(t, "/api/v1/workflows/x", apiErr.Path)
			assert.NotEmpty(t, apiErr.RequestID)
			assert.Contains(t, err.Error(), tt.wantMessage)
		})
	}
}

func TestHTTPTransportNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	transport, err := NewHTTPTransport(Config{APIKey: "k", BaseURL: baseURL})
	require.NoError(t, err)

	_, err = transport.Do(context.Background(), http.MethodGet, "/api/v1/workflows", nil, nil)
	require.Error(t, err)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.StatusCode)
	assert.False(t, apiErr.HasStatus())
	assert.NotEmpty(t, apiErr.Message)
	assert.Contains(t, err.Error(), "request error")
}

func TestHTTPTransportTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(Config{APIKey: "k", BaseURL: server.URL}, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = transport.Do(context.Background(), http.MethodGet, "/slow", nil, nil)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, mustAPIError(t, err).Kind)
}

func TestHTTPTransportUndecodableSuccess(t *testing.T) {
	transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := transport.Do(context.Background(), http.MethodGet, "/api/v1/workflows", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedResponse))
	assert.False(t, mustAPIError(t, err).HasStatus())
}

func TestBodyDecode(t *testing.T) {
	body := Body{
		"data":  []byte(`{"id":"1"}`),
		"empty": []byte(`null`),
	}

	assert.True(t, body.Has("data"))
	assert.False(t, body.Has("empty"))
	assert.False(t, body.Has("missing"))

	var v map[string]any
	require.NoError(t, body.Decode("data", &v))
	assert.Equal(t, "1", v["id"])

	err := body.Decode("missing", &v)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)

	var n int
	err = body.Decode("data", &n)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func mustAPIError(t *testing.T, err error) *Error {
	t.Helper()
	apiErr, ok := AsError(err)
	require.True(t, ok, "expected *Error, got %T: %v", err, err)
	return apiErr
}
