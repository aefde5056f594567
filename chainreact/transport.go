package chainreact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport performs exactly one authenticated API request per call.
//
// Implementations return the decoded top-level JSON object on success and an
// *Error for HTTP or network failures.
type Transport interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) (Body, error)
}

// Body is a decoded top-level JSON object whose members are decoded on demand.
type Body map[string]json.RawMessage

// Has reports whether key is present and not null.
func (b Body) Has(key string) bool {
	raw, ok := b[key]
	return ok && len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Decode unmarshals the member named key into v.
func (b Body) Decode(key string, v any) error {
	if !b.Has(key) {
		return fmt.Errorf("%w: missing %q field", ErrUnexpectedResponse, key)
	}
	if err := json.Unmarshal(b[key], v); err != nil {
		return fmt.Errorf("%w: failed to decode %q: %v", ErrUnexpectedResponse, key, err)
	}
	return nil
}

// HTTPTransport is the Transport used by NewClient.
type HTTPTransport struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport validates cfg and creates a transport bound to it.
func NewHTTPTransport(cfg Config, opts ...Option) (*HTTPTransport, error) {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newHTTPTransport(cfg, applyOptions(opts)), nil
}

func newHTTPTransport(cfg Config, o clientOptions) *HTTPTransport {
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	} else if o.timeout > 0 {
		clone := *httpClient
		clone.Timeout = o.timeout
		httpClient = &clone
	}

	return &HTTPTransport{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		userAgent:  o.userAgent,
		httpClient: httpClient,
		logger:     o.logger,
	}
}

// BaseURL returns the endpoint requests are sent to.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

// Do performs an HTTP request with authentication
func (t *HTTPTransport) Do(ctx context.Context, method, path string, query url.Values, body any) (Body, error) {
	requestID := uuid.NewString()

	endpoint := t.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode body: %v", ErrInvalidRequest, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, networkError(method, path, requestID, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("ChainReact API request failed")
		return nil, networkError(method, path, requestID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(method, path, requestID, fmt.Errorf("failed to read response body: %w", err))
	}

	t.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("ChainReact API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(method, path, requestID, resp.StatusCode, respBody)
	}

	parsed := Body{}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return parsed, nil
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, networkError(method, path, requestID,
			fmt.Errorf("%w: status %d with undecodable body: %v", ErrUnexpectedResponse, resp.StatusCode, err))
	}

	return parsed, nil
}

// errorMessage resolves the human-readable message of a failed response:
// the body's "error" member when there is one, the status line otherwise.
func errorMessage(status int, body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if raw, ok := envelope["error"]; ok && len(raw) > 0 && string(raw) != "null" {
			var msg string
			if err := json.Unmarshal(raw, &msg); err == nil {
				if msg != "" {
					return msg
				}
			} else {
				return string(raw)
			}
		}
	}

	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("%d %s", status, text)
	}
	return fmt.Sprintf("HTTP status %d", status)
}
