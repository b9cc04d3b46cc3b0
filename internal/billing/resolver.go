package billing

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultDomain is the URL template requests are built against. The
// single %s verb is replaced with the account subdomain.
const DefaultDomain = "https://%s.chargify.com/"

// verbs maps reserved trailing path segments to HTTP methods. A chain
// ending in one of these consumes the segment as the request method
// instead of a URL component.
var verbs = map[string]string{
	"create": http.MethodPost,
	"read":   http.MethodGet,
	"update": http.MethodPut,
	"delete": http.MethodDelete,
}

// identifierBinding associates an argument key with the resource segment
// its value is inserted after.
type identifierBinding struct {
	arg     string
	segment string
}

// identifierBindings is consulted in order when placing identifier
// arguments into the path. Order matters for paths that nest several
// identified resources.
var identifierBindings = []identifierBinding{
	{"customer_id", "customers"},
	{"product_id", "products"},
	{"subscription_id", "subscriptions"},
	{"component_id", "components"},
	{"handle", "handle"},
	{"statement_id", "statements"},
	{"product_family_id", "product_families"},
	{"coupon_id", "coupons"},
	{"code_id", "codes"},
	{"transaction_id", "transactions"},
	{"usage_id", "usages"},
	{"migration_id", "migrations"},
	{"payment_profile_id", "payment_profiles"},
	{"invoice_id", "invoices"},
}

// IdentifierKeys returns the argument keys recognized as path
// identifiers, in binding order.
func IdentifierKeys() []string {
	keys := make([]string, len(identifierBindings))
	for i, b := range identifierBindings {
		keys[i] = b.arg
	}
	return keys
}

// buildRequest is the pure path/verb resolver. It consumes an accumulated
// segment chain plus call arguments and emits the request descriptor.
// Neither input is mutated.
func buildRequest(domain, subdomain string, format Format, path []string, args Args) (Request, error) {
	if len(path) == 0 {
		return Request{}, &ConfigurationError{Reason: "empty request path: chain at least one resource segment before calling"}
	}

	segments := make([]string, len(path))
	copy(segments, path)

	method := http.MethodGet
	if m, ok := verbs[segments[len(segments)-1]]; ok {
		method = m
		segments = segments[:len(segments)-1]
	}

	rest := make(map[string]any, len(args))
	for k, v := range args {
		rest[k] = v
	}

	for _, b := range identifierBindings {
		value, ok := rest[b.arg]
		if !ok {
			continue
		}
		delete(rest, b.arg)
		// A falsy identifier (zero, empty string, nil, false) is treated
		// as absent and never inserted. Historical behavior, kept.
		if !truthy(value) {
			continue
		}
		segments = insertAfter(segments, b.segment, fmt.Sprint(value))
	}

	body := map[string]any{}
	if raw, ok := rest["data"]; ok {
		delete(rest, "data")
		if raw != nil {
			m, ok := raw.(map[string]any)
			if !ok {
				return Request{}, &ConfigurationError{
					Reason: fmt.Sprintf("data argument must be a map[string]any, got %T", raw),
				}
			}
			body = m
		}
	}

	return Request{
		Method: method,
		URL:    fmt.Sprintf(domain, subdomain) + strings.Join(segments, "/") + "." + string(format),
		Query:  rest,
		Body:   body,
	}, nil
}

// insertAfter places value immediately after the first occurrence of
// name, or at the end when name is not present.
func insertAfter(segments []string, name, value string) []string {
	for i, s := range segments {
		if s == name {
			out := make([]string, 0, len(segments)+1)
			out = append(out, segments[:i+1]...)
			out = append(out, value)
			return append(out, segments[i+1:]...)
		}
	}
	return append(segments, value)
}

// truthy reports whether an identifier value counts as supplied. Mirrors
// the loose truthiness the API's historical clients applied.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int8:
		return x != 0
	case int16:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case uint:
		return x != 0
	case uint8:
		return x != 0
	case uint16:
		return x != 0
	case uint32:
		return x != 0
	case uint64:
		return x != 0
	case float32:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
