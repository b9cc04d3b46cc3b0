package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chargify/chargify-cli/internal/billing"
	"github.com/chargify/chargify-cli/internal/outfmt"
	"github.com/chargify/chargify-cli/internal/resolve"
)

var actionNames = []string{"create", "read", "update", "delete"}

func newAPICmd() *cobra.Command {
	var action string
	var identifiers []string
	var fields []string
	var inputFile string
	var jsonBody string
	var silent bool

	cmd := &cobra.Command{
		Use:     "api <segment>...",
		Aliases: []string{"ap"},
		Short:   "Make raw API requests against any Chargify resource chain",
		Long: `Make raw API requests against any Chargify resource chain.

Positional arguments name the resource path. The resolver appends the
site subdomain and response format to build the final URL:
  cfy api subscriptions            ->  GET https://{subdomain}.chargify.com/subscriptions.json

The trailing action decides the HTTP method (read is the default):
  create -> POST, read -> GET, update -> PUT, delete -> DELETE

Identifier arguments are spliced into the path after their owning
resource segment:
  cfy api subscriptions components usages \
      --id subscription_id=123 --id component_id=456
  ->  GET .../subscriptions/123/components/456/usages.json`,
		Example: `  # List customers
  cfy api customers

  # Fetch one subscription
  cfy api subscriptions --id subscription_id=123

  # Record a usage (nested identifiers)
  cfy api subscriptions components usages -X create \
      --id subscription_id=123 --id component_id=456 \
      -d '{"usage":{"quantity":5}}'

  # Query parameters
  cfy api customers -f page=2 -f per_page=50

  # Body from a file, or - for stdin
  cfy api customers -X create -i customer.json

  # Preview the request without sending it
  cfy api subscriptions reactivate -X update --id subscription_id=123 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			segments := append([]string(nil), args...)

			if action != "" {
				action = strings.ToLower(action)
				if !isValidAction(action) {
					msg := fmt.Sprintf("invalid action %q: must be one of %s", action, strings.Join(actionNames, ", "))
					if suggestion := resolve.Suggest(action, actionNames); suggestion != "" {
						msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
					}
					return fmt.Errorf("%s", msg)
				}
				segments = append(segments, action)
			}

			callArgs, err := buildCallArgs(identifiers, fields, inputFile, jsonBody)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			chain := client.At(segments...)

			if flags.DryRun {
				req, err := chain.Build(callArgs)
				if err != nil {
					return err
				}
				return printRequestPreview(cmd, req)
			}

			result, err := chain.Call(cmdContext(cmd), callArgs)
			if err != nil {
				return err
			}

			if silent {
				return nil
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			return outfmt.WriteJSON(cmd.OutOrStdout(), result)
		}),
	}

	cmd.Flags().StringVarP(&action, "action", "X", "", "Terminal action: create, read, update or delete (default read)")
	cmd.Flags().StringArrayVar(&identifiers, "id", nil, "Path identifier as key=value (e.g., subscription_id=123); repeatable")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Query parameter as key=value (JSON-typed values); repeatable")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "data", "d", "", "Request body as inline JSON")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Suppress response output")
	flagAlias(cmd.Flags(), "action", "act")

	return cmd
}

func isValidAction(action string) bool {
	for _, a := range actionNames {
		if a == action {
			return true
		}
	}
	return false
}

// buildCallArgs assembles the resolver argument map: identifiers and query
// fields become top-level keys, the body lands under "data".
func buildCallArgs(identifiers, fields []string, inputFile, jsonBody string) (billing.Args, error) {
	args := billing.Args{}

	known := billing.IdentifierKeys()
	for _, id := range identifiers {
		key, value, err := parseField(id)
		if err != nil {
			return nil, err
		}
		if !isKnownIdentifier(key, known) {
			msg := fmt.Sprintf("unknown identifier %q", key)
			if suggestion := resolve.Suggest(key, known); suggestion != "" {
				msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			return nil, fmt.Errorf("%s", msg)
		}
		args[key] = value
	}

	for _, field := range fields {
		key, value, err := parseRawField(field)
		if err != nil {
			return nil, err
		}
		if _, dup := args[key]; dup {
			return nil, fmt.Errorf("field %q conflicts with an --id argument", key)
		}
		args[key] = value
	}

	data, err := buildRequestData(nil, inputFile, jsonBody)
	if err != nil {
		return nil, err
	}
	if data != nil {
		args["data"] = data
	}

	return args, nil
}

func isKnownIdentifier(key string, known []string) bool {
	for _, k := range known {
		if k == key {
			return true
		}
	}
	return false
}
