package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/chargify/chargify-cli/internal/billing"
)

func TestHandleErrorNil(t *testing.T) {
	if got := HandleError(nil); got != "" {
		t.Errorf("HandleError(nil) = %q, want empty", got)
	}
}

func TestHandleErrorAPIError(t *testing.T) {
	err := &billing.APIError{
		StatusCode: 422,
		Code:       billing.ErrValidation,
		Payload: map[string]any{
			"errors": []any{"Email: cannot be blank", "First name: cannot be blank"},
		},
	}
	msg := HandleError(err)

	if !strings.Contains(msg, "API error (HTTP 422)") {
		t.Errorf("msg = %q", msg)
	}
	if !strings.Contains(msg, "- Email: cannot be blank") {
		t.Errorf("missing payload errors: %q", msg)
	}
	if !strings.Contains(msg, "- First name: cannot be blank") {
		t.Errorf("missing second payload error: %q", msg)
	}
}

func TestHandleErrorUnauthorizedSuggestion(t *testing.T) {
	err := &billing.APIError{StatusCode: 401, Code: billing.ErrUnauthorized}
	msg := HandleError(err)
	if !strings.Contains(msg, "cfy auth") {
		t.Errorf("unauthorized should point at auth commands: %q", msg)
	}
}

func TestHandleErrorConnectionError(t *testing.T) {
	err := &billing.ConnectionError{Err: errors.New("dial tcp: connection refused")}
	msg := HandleError(err)
	if !strings.Contains(msg, "Connection failed") {
		t.Errorf("msg = %q", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("cause should be included: %q", msg)
	}
}

func TestHandleErrorConfigurationError(t *testing.T) {
	err := &billing.ConfigurationError{Reason: "empty request path"}
	msg := HandleError(err)
	if !strings.Contains(msg, "empty request path") {
		t.Errorf("msg = %q", msg)
	}
}

func TestHandleErrorStringPayloadErrors(t *testing.T) {
	err := &billing.APIError{
		StatusCode: 422,
		Code:       billing.ErrValidation,
		Payload:    map[string]any{"errors": "Coupon code invalid"},
	}
	msg := HandleError(err)
	if !strings.Contains(msg, "- Coupon code invalid") {
		t.Errorf("msg = %q", msg)
	}
}

func TestHandleErrorGeneric(t *testing.T) {
	msg := HandleError(errors.New("boom"))
	if !strings.Contains(msg, "Error: boom") {
		t.Errorf("msg = %q", msg)
	}
}
