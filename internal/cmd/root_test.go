package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRootJSONConflictsWithOutput(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--json", "--output", "text"})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !strings.Contains(err.Error(), "--json conflicts") {
		t.Errorf("error = %v", err)
	}
}

func TestRootJSONAgreesWithOutputJSON(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--json", "--output", "json"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected JSON output, got %q", output)
	}
}

func TestRootJQAutoPromotesToJSON(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--jq", ".version"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if strings.TrimSpace(output) != `"dev"` {
		t.Errorf("output = %q, want %q", strings.TrimSpace(output), `"dev"`)
	}
}

func TestRootJQConflictsWithExplicitText(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--jq", ".version", "--output", "text"})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !strings.Contains(err.Error(), "require") {
		t.Errorf("error = %v", err)
	}
}

func TestRootCompactJSON(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--json", "--compact-json"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	trimmed := strings.TrimSpace(output)
	if strings.Contains(trimmed, "\n") {
		t.Errorf("compact output should be one line: %q", output)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
}

func TestRootQuietSuppressesTextOutput(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--quiet"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if output != "" {
		t.Errorf("quiet output = %q, want empty", output)
	}
}

func TestRootQuietKeepsJSONOutput(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--quiet", "--json"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.Contains(output, "dev") {
		t.Errorf("JSON output should survive --quiet: %q", output)
	}
}

func TestRootUnknownCommandSuggestion(t *testing.T) {
	var execErr error
	stderr := captureStderr(t, func() {
		execErr = Execute(context.Background(), []string{"custmers"})
	})
	if execErr == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(stderr, "Did you mean") || !strings.Contains(stderr, "customers") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRootUnknownFlagSuggestion(t *testing.T) {
	var execErr error
	stderr := captureStderr(t, func() {
		execErr = Execute(context.Background(), []string{"version", "--quet"})
	})
	if execErr == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(stderr, "--quiet") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRootInvalidOutputFormat(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--output", "yaml"})
	if err == nil {
		t.Fatal("expected error for invalid output mode")
	}
}

func TestRootNDJSONAliasAccepted(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--output", "ndjson"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("output = %q", output)
	}
}

func TestRootOutputEnvDefault(t *testing.T) {
	t.Setenv("CHARGIFY_OUTPUT", "json")

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected JSON via CHARGIFY_OUTPUT, got %q", output)
	}
}

func TestRootNegativeTimeoutRejected(t *testing.T) {
	err := Execute(context.Background(), []string{"version", "--timeout", "-1s"})
	if err == nil {
		t.Fatal("expected error for non-positive timeout")
	}
	if !strings.Contains(err.Error(), "--timeout") {
		t.Errorf("error = %v", err)
	}
}

func TestRootFlagAliases(t *testing.T) {
	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"version", "--out", "json"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("--out alias should behave like --output: %q", output)
	}
}

func TestRootFlagsResetBetweenExecutions(t *testing.T) {
	_ = captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version", "--json"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"version"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
	if !strings.Contains(output, "chargify-cli version") {
		t.Errorf("second run should be back to text output: %q", output)
	}
}
