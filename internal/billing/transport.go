package billing

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chargify/chargify-cli/internal/debug"
)

// DefaultTimeout bounds a single request through the default transport.
const DefaultTimeout = 30 * time.Second

// Transport executes a prepared Request with the given credential and
// returns the decoded response body: parsed JSON for JSON content
// types, the raw text otherwise. Failures surface as *APIError or
// *ConnectionError.
type Transport interface {
	Do(ctx context.Context, req Request, apiKey string) (any, error)
}

// HTTPTransport is the network-backed Transport. It performs exactly
// one attempt per request: no retries, no caching, no backoff.
type HTTPTransport struct {
	HTTP      *http.Client
	UserAgent string
}

// NewHTTPTransport builds a transport on the given http.Client, or on a
// TLS 1.2+ client with DefaultTimeout when nil.
func NewHTTPTransport(httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		base, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			base = &http.Transport{}
		}
		rt := base.Clone()
		if rt.TLSClientConfig == nil {
			rt.TLSClientConfig = &tls.Config{}
		} else {
			rt.TLSClientConfig = rt.TLSClientConfig.Clone()
		}
		rt.TLSClientConfig.MinVersion = tls.VersionTLS12
		httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: rt,
		}
	}
	return &HTTPTransport{HTTP: httpClient}
}

// Do executes the request. The API key is passed as HTTP basic auth
// with the fixed dummy password the service expects.
func (t *HTTPTransport) Do(ctx context.Context, req Request, apiKey string) (any, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(apiKey, "X")
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if t.UserAgent != "" {
		httpReq.Header.Set("User-Agent", t.UserAgent)
	}
	if strings.HasSuffix(httpReq.URL.Path, "."+string(FormatJSON)) {
		httpReq.Header.Set("Accept", "application/json")
	}

	if len(req.Query) > 0 {
		q := make(url.Values, len(req.Query))
		for k, v := range req.Query {
			q.Set(k, fmt.Sprint(v))
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	start := time.Now()
	resp, err := t.HTTP.Do(httpReq)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", req.Method, "url", req.URL, "error", err)
		}
		return nil, &ConnectionError{Err: err}
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", req.Method, "url", req.URL, "status", resp.StatusCode, "duration", time.Since(start))
	}

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "json")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if !isJSON {
			return string(respBody), nil
		}
		if len(respBody) == 0 {
			return nil, nil
		}
		var decoded any
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return nil, fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
		return decoded, nil
	}

	var payload map[string]any
	if isJSON && len(respBody) > 0 {
		_ = json.Unmarshal(respBody, &payload)
	}
	if payload == nil {
		payload = map[string]any{"body": string(respBody)}
	}
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeFromStatus(resp.StatusCode),
		Payload:    payload,
	}
}
