package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chargify/chargify-cli/internal/billing"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *billing.APIError
	var connErr *billing.ConnectionError
	var cfgErr *billing.ConfigurationError

	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n", apiErr.StatusCode, apiErr.Code)
		if detail := payloadErrors(apiErr.Payload); detail != "" {
			fmt.Fprintf(&msg, "%s\n", detail)
		}
		if suggestion := apiErr.Code.Suggestion(); suggestion != "" {
			fmt.Fprintf(&msg, "\n%s\n", suggestion)
		}

	case errors.As(err, &connErr):
		msg.WriteString("Connection failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Verify the subdomain: cfy auth status\n")
		fmt.Fprintf(&msg, "\nCause: %v\n", connErr.Err)

	case errors.As(err, &cfgErr):
		fmt.Fprintf(&msg, "Error: %s\n", cfgErr.Error())

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the subdomain spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

// payloadErrors flattens the "errors" key of an API error payload into a
// readable bullet list.
func payloadErrors(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	raw, ok := payload["errors"]
	if !ok {
		return ""
	}

	var lines []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			lines = append(lines, fmt.Sprintf("  - %v", item))
		}
	case string:
		lines = append(lines, "  - "+v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		lines = append(lines, "  - "+string(data))
	}
	return strings.Join(lines, "\n")
}

// ExitWithError prints error with suggestions and exits
func ExitWithError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(os.Stderr, HandleError(err))
	os.Exit(ExitCode(err))
}
