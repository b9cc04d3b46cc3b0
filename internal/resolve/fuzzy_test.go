package resolve

import (
	"testing"
)

func TestSuggest_ExactMatchWins(t *testing.T) {
	candidates := []string{"customers", "subscriptions", "components"}
	if got := Suggest("Customers", candidates); got != "customers" {
		t.Errorf("Suggest = %q, want customers", got)
	}
}

func TestSuggest_FuzzyMatch(t *testing.T) {
	candidates := []string{"customer_id", "subscription_id", "component_id"}
	if got := Suggest("custmer_id", candidates); got != "customer_id" {
		t.Errorf("Suggest = %q, want customer_id", got)
	}
}

func TestSuggest_NoMatch(t *testing.T) {
	candidates := []string{"customers", "subscriptions"}
	if got := Suggest("zzzz", candidates); got != "" {
		t.Errorf("Suggest = %q, want empty", got)
	}
}

func TestSuggest_EmptyInputs(t *testing.T) {
	if got := Suggest("", []string{"a"}); got != "" {
		t.Errorf("empty query should return empty, got %q", got)
	}
	if got := Suggest("a", nil); got != "" {
		t.Errorf("empty candidates should return empty, got %q", got)
	}
	if got := Suggest("   ", []string{"a"}); got != "" {
		t.Errorf("whitespace query should return empty, got %q", got)
	}
}

func TestSuggestAll_Limit(t *testing.T) {
	candidates := []string{"product_id", "product_family_id", "products"}
	matches := SuggestAll("product", candidates, 2)
	if len(matches) > 2 {
		t.Errorf("expected at most 2 matches, got %d", len(matches))
	}
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
}

func TestSuggestAll_ZeroLimit(t *testing.T) {
	if matches := SuggestAll("a", []string{"a"}, 0); matches != nil {
		t.Errorf("zero limit should return nil, got %v", matches)
	}
}
