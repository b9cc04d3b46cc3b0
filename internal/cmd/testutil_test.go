// Test utilities for the cfy CLI commands.
//
// Command tests run the real cobra tree through Execute() and substitute
// the billing transport, so request construction, flag parsing, and output
// formatting are all exercised without network I/O:
//
//	transport := newStubTransport().
//		On("GET", "customers.json", []any{})
//	setupStubClient(t, transport)
//
//	output := captureStdout(t, func() {
//		if err := Execute(context.Background(), []string{"customers", "list"}); err != nil {
//			t.Fatalf("failed: %v", err)
//		}
//	})
//
// Credentials come from environment variables; the keyring is mocked via
// config.SetOpenKeyring (see TestMain). Tests that need stored profiles
// install a shared in-memory keyring with withSharedKeyring.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/99designs/keyring"

	"github.com/chargify/chargify-cli/internal/billing"
	"github.com/chargify/chargify-cli/internal/config"
)

// stubTransport implements billing.Transport with canned responses keyed
// by "METHOD url-suffix". Every executed request is recorded.
type stubTransport struct {
	routes   map[string]any
	requests []billing.Request
	apiKey   string
	err      error
}

func newStubTransport() *stubTransport {
	return &stubTransport{routes: make(map[string]any)}
}

// On registers a response for requests whose URL (path plus extension,
// without query) ends in suffix.
func (s *stubTransport) On(method, suffix string, result any) *stubTransport {
	s.routes[method+" "+suffix] = result
	return s
}

// Fail makes every request return err.
func (s *stubTransport) Fail(err error) *stubTransport {
	s.err = err
	return s
}

func (s *stubTransport) Do(_ context.Context, req billing.Request, apiKey string) (any, error) {
	s.requests = append(s.requests, req)
	s.apiKey = apiKey
	if s.err != nil {
		return nil, s.err
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	for key, result := range s.routes {
		method, suffix, _ := strings.Cut(key, " ")
		if req.Method == method && strings.HasSuffix(u.Path, suffix) {
			return result, nil
		}
	}
	return nil, fmt.Errorf("unexpected request: %s %s", req.Method, req.URL)
}

func (s *stubTransport) lastRequest(t *testing.T) billing.Request {
	t.Helper()
	if len(s.requests) == 0 {
		t.Fatal("no requests were executed")
	}
	return s.requests[len(s.requests)-1]
}

// setupStubClient points client construction at the stub transport and
// provides credentials through the environment.
func setupStubClient(t *testing.T, transport billing.Transport) {
	t.Helper()

	t.Setenv("CHARGIFY_SUBDOMAIN", "testsite")
	t.Setenv("CHARGIFY_API_KEY", "test-key")
	t.Setenv("CHARGIFY_FORMAT", "")
	t.Setenv("CHARGIFY_PROFILE", "")

	orig := newBillingClient
	newBillingClient = func(cfg config.ClientConfig, _ ...billing.Option) (*billing.Client, error) {
		opts := []billing.Option{billing.WithTransport(transport)}
		if cfg.Format != "" {
			opts = append(opts, billing.WithFormat(cfg.Format))
		}
		return billing.New(cfg.APIKey, cfg.Subdomain, opts...)
	}
	t.Cleanup(func() { newBillingClient = orig })
}

// withSharedKeyring installs a single in-memory keyring so profile state
// survives across keyring opens within one test.
func withSharedKeyring(t *testing.T) {
	t.Helper()

	// Detach from ambient credentials so keychain profiles are consulted.
	t.Setenv("CHARGIFY_SUBDOMAIN", "")
	t.Setenv("CHARGIFY_API_KEY", "")
	t.Setenv("CHARGIFY_PROFILE", "")

	ring := keyring.NewArrayKeyring(nil)
	cleanup := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(cleanup)
}

// captureStdout executes fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr executes fn and returns what it wrote to stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}
