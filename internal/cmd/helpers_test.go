package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestParseField(t *testing.T) {
	key, value, err := parseField("email=jane@example.com")
	if err != nil {
		t.Fatalf("parseField() error = %v", err)
	}
	if key != "email" || value != "jane@example.com" {
		t.Errorf("got %q=%q", key, value)
	}

	// Values may contain '='.
	_, value, err = parseField("query=a=b")
	if err != nil {
		t.Fatalf("parseField() error = %v", err)
	}
	if value != "a=b" {
		t.Errorf("value = %q", value)
	}

	if _, _, err := parseField("no-separator"); err == nil {
		t.Error("expected error without =")
	}
	if _, _, err := parseField("=value"); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestParseRawField(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"count=5", float64(5)},
		{"active=true", true},
		{"name=jane", "jane"}, // non-JSON values stay strings
		{`tags=["a","b"]`, nil},
	}
	for _, tt := range tests {
		_, value, err := parseRawField(tt.in)
		if err != nil {
			t.Fatalf("parseRawField(%q) error = %v", tt.in, err)
		}
		if tt.want != nil && value != tt.want {
			t.Errorf("parseRawField(%q) = %v (%T), want %v", tt.in, value, value, tt.want)
		}
	}

	_, value, err := parseRawField(`tags=["a","b"]`)
	if err != nil {
		t.Fatalf("parseRawField() error = %v", err)
	}
	tags, ok := value.([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("tags = %v (%T)", value, value)
	}
}

func TestBuildRequestDataPrecedence(t *testing.T) {
	// Fields override inline JSON keys.
	data, err := buildRequestData([]string{"email=override@example.com"}, "", `{"email":"base@example.com","name":"Jane"}`)
	if err != nil {
		t.Fatalf("buildRequestData() error = %v", err)
	}
	if data["email"] != "override@example.com" {
		t.Errorf("email = %v", data["email"])
	}
	if data["name"] != "Jane" {
		t.Errorf("name = %v", data["name"])
	}
}

func TestBuildRequestDataFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	if err := os.WriteFile(path, []byte(`{"email":"file@example.com"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := buildRequestData(nil, path, "")
	if err != nil {
		t.Fatalf("buildRequestData() error = %v", err)
	}
	if data["email"] != "file@example.com" {
		t.Errorf("email = %v", data["email"])
	}
}

func TestBuildRequestDataConflict(t *testing.T) {
	if _, err := buildRequestData(nil, "body.json", `{}`); err == nil {
		t.Error("expected conflict between --data and --input")
	}
}

func TestBuildRequestDataEmpty(t *testing.T) {
	data, err := buildRequestData(nil, "", "")
	if err != nil {
		t.Fatalf("buildRequestData() error = %v", err)
	}
	if data != nil {
		t.Errorf("data = %v, want nil", data)
	}
}

func TestBuildRequestDataBadJSON(t *testing.T) {
	if _, err := buildRequestData(nil, "", `{not json`); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestEnvelope(t *testing.T) {
	wrapped := envelope("customer", map[string]any{"email": "a@b.c"})
	if _, ok := wrapped["customer"]; !ok {
		t.Errorf("wrapped = %v", wrapped)
	}

	// Already-enveloped bodies pass through unchanged.
	already := map[string]any{"customer": map[string]any{"email": "a@b.c"}}
	if got := envelope("customer", already); len(got) != 1 {
		t.Errorf("got = %v", got)
	} else if _, nested := got["customer"].(map[string]any)["customer"]; nested {
		t.Error("envelope double-wrapped the body")
	}
}

func TestStringField(t *testing.T) {
	m := map[string]any{
		"id":     float64(42),
		"ratio":  1.5,
		"email":  "a@b.c",
		"absent": nil,
	}
	if got := stringField(m, "id"); got != "42" {
		t.Errorf("id = %q", got)
	}
	if got := stringField(m, "ratio"); got != "1.5" {
		t.Errorf("ratio = %q", got)
	}
	if got := stringField(m, "email"); got != "a@b.c" {
		t.Errorf("email = %q", got)
	}
	if got := stringField(m, "absent"); got != "" {
		t.Errorf("absent = %q", got)
	}
	if got := stringField(nil, "x"); got != "" {
		t.Errorf("nil map = %q", got)
	}
}

func TestUnwrapResource(t *testing.T) {
	wrapped := map[string]any{"customer": map[string]any{"id": "1"}}
	if got := unwrapResource(wrapped, "customer"); got["id"] != "1" {
		t.Errorf("got = %v", got)
	}

	bare := map[string]any{"id": "2"}
	if got := unwrapResource(bare, "customer"); got["id"] != "2" {
		t.Errorf("got = %v", got)
	}

	if got := unwrapResource("not a map", "customer"); got != nil {
		t.Errorf("got = %v", got)
	}
}

func TestUnwrapList(t *testing.T) {
	list := []any{
		map[string]any{"customer": map[string]any{"id": "1"}},
		map[string]any{"customer": map[string]any{"id": "2"}},
	}
	items := unwrapList(list, "customer")
	if len(items) != 2 || items[0]["id"] != "1" {
		t.Errorf("items = %v", items)
	}

	if got := unwrapList(map[string]any{}, "customer"); got != nil {
		t.Errorf("non-list input should yield nil, got %v", got)
	}
}

func TestFlagAliasBridgesToCanonical(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var value string
	fs.StringVar(&value, "output", "text", "")
	flagAlias(fs, "output", "out")

	if err := fs.Parse([]string{"--out", "json"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if value != "json" {
		t.Errorf("value = %q, want json", value)
	}
	if !fs.Changed("output") {
		t.Error("canonical flag should be marked changed via alias")
	}

	alias := fs.Lookup("out")
	if alias == nil {
		t.Fatal("alias flag not registered")
	}
	if !alias.Hidden {
		t.Error("alias should be hidden from help")
	}
}
