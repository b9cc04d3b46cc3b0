package billing

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{401, ErrUnauthorized},
		{403, ErrForbidden},
		{404, ErrNotFound},
		{409, ErrDuplicateSubmission},
		{422, ErrValidation},
		{500, ErrServer},
		{502, ErrServer},
		{599, ErrServer},
		{400, ErrUnknown},
		{418, ErrUnknown},
		{600, ErrUnknown},
	}
	for _, tt := range tests {
		if got := ErrorCodeFromStatus(tt.status); got != tt.want {
			t.Errorf("ErrorCodeFromStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 404, Code: ErrNotFound}
	want := "billing API error: not_found (status 404)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestPredicatesThroughWrapping(t *testing.T) {
	base := &APIError{StatusCode: 422, Code: ErrValidation}
	wrapped := fmt.Errorf("creating customer: %w", base)

	if !IsValidation(wrapped) {
		t.Error("IsValidation should see through wrapping")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound should be false for a validation error")
	}
}

func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &ConnectionError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("ConnectionError should unwrap to its cause")
	}
	if !IsConnectionError(fmt.Errorf("fetching: %w", err)) {
		t.Error("IsConnectionError should see through wrapping")
	}
}

func TestSuggestions(t *testing.T) {
	if s := ErrUnauthorized.Suggestion(); s == "" {
		t.Error("unauthorized should carry a suggestion")
	}
	if s := ErrUnknown.Suggestion(); s != "" {
		t.Errorf("unknown should carry no suggestion, got %q", s)
	}
}
