package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chargify/chargify-cli/internal/update"
)

func withReleaseServer(t *testing.T, tag string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/releases/%s"}`, tag, tag)
	}))
	orig := update.GitHubReleasesURL
	update.GitHubReleasesURL = server.URL
	t.Cleanup(func() {
		update.GitHubReleasesURL = orig
		server.Close()
	})
}

func TestVersionPrints(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.Contains(output, "chargify-cli version dev") {
		t.Errorf("output = %q", output)
	}
}

func TestVersionCheckUpdateAvailable(t *testing.T) {
	withReleaseServer(t, "v99.0.0")

	origVersion := version
	version = "1.0.0"
	t.Cleanup(func() { version = origVersion })

	var stdout string
	stderr := captureStderr(t, func() {
		stdout = captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"version", "--check"}); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
		})
	})

	if !strings.Contains(stdout, "chargify-cli version 1.0.0") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stderr, "Update available: 1.0.0 -> 99.0.0") {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, "https://example.com/releases/v99.0.0") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestVersionCheckUpToDate(t *testing.T) {
	withReleaseServer(t, "v1.0.0")

	origVersion := version
	version = "1.0.0"
	t.Cleanup(func() { version = origVersion })

	stderr := captureStderr(t, func() {
		_ = captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"version", "--check"}); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
		})
	})
	if !strings.Contains(stderr, "latest version") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--json"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, output)
	}
	if payload["version"] != "dev" {
		t.Errorf("version = %v", payload["version"])
	}
}
