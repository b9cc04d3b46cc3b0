// Package billing provides a client for a Chargify-style subscription
// billing REST API.
//
// Calls are expressed as a chain of resource segments terminated by an
// action. The client derives the HTTP method, URL, query parameters, and
// request body from the chain, so callers never assemble URLs by hand:
//
//	client, _ := billing.New(apiKey, "acme")
//	// GET https://acme.chargify.com/subscriptions/123/components/456/usages.json
//	out, err := client.At("subscriptions", "components", "usages").Call(ctx, billing.Args{
//		"subscription_id": 123,
//		"component_id":    456,
//	})
package billing

import (
	"fmt"
	"strings"
)

// Format is the response format appended as the request URL's extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ParseFormat validates a response format. Input is case-insensitive and
// normalized to lowercase; anything other than json or xml is a
// *ConfigurationError.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXML:
		return f, nil
	default:
		return "", &ConfigurationError{
			Reason: fmt.Sprintf("invalid response format %q: must be one of json, xml", s),
		}
	}
}

// Args carries the named arguments of a terminal call.
//
// Reserved keys are consumed while the request is constructed: identifier
// keys (customer_id, subscription_id, ...) are placed into the URL path,
// and "data" becomes the request body. Everything else is sent as query
// parameters, unchanged. The map is never modified by the client.
type Args map[string]any

// Request is a fully specified API request, ready for a Transport to
// execute. The client produces it; it performs no I/O itself.
type Request struct {
	Method string
	URL    string
	Query  map[string]any
	Body   map[string]any
}
