package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chargify/chargify-cli/internal/billing"
	"github.com/chargify/chargify-cli/internal/outfmt"
)

func newCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "cu"},
		Short:   "Manage customers",
		Long:    "List, fetch, create, update, and delete customers on your Chargify site",
	}

	cmd.AddCommand(newCustomersListCmd())
	cmd.AddCommand(newCustomersGetCmd())
	cmd.AddCommand(newCustomersCreateCmd())
	cmd.AddCommand(newCustomersUpdateCmd())
	cmd.AddCommand(newCustomersDeleteCmd())

	return cmd
}

func newCustomersListCmd() *cobra.Command {
	var page int
	var perPage int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List customers",
		Example: `  # List customers in table format
  cfy customers list

  # Paginate
  cfy customers list --page 2 --per-page 50

  # JSON output
  cfy customers list --output json --jq '.[].customer.email'`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			callArgs := billing.Args{}
			if page > 0 {
				callArgs["page"] = page
			}
			if perPage > 0 {
				callArgs["per_page"] = perPage
			}

			chain := client.At("customers")
			if flags.DryRun {
				req, err := chain.Build(callArgs)
				if err != nil {
					return err
				}
				return printRequestPreview(cmd, req)
			}

			result, err := chain.Call(cmdContext(cmd), callArgs)
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, result)
			}

			customers := unwrapList(result, "customer")
			f := outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if len(customers) == 0 {
				f.Empty("No customers found")
				return nil
			}
			f.StartTable(resourceHeaders("customer"))
			for _, c := range customers {
				f.Row(customerRow(c)...)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().IntVar(&page, "page", 0, "Result page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Results per page")
	flagAlias(cmd.Flags(), "per-page", "pp")

	return cmd
}

func newCustomersGetCmd() *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:     "get <id>...",
		Aliases: []string{"g", "show"},
		Short:   "Get one or more customers by ID",
		Long: `Get customers by ID.

Multiple IDs are fetched concurrently; per-ID failures are reported
without aborting the batch.`,
		Example: `  # Single customer
  cfy customers get 123

  # Several at once
  cfy customers get 123 456 789 --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			if len(args) == 1 {
				result, err := fetchCustomer(ctx, client, args[0])
				if err != nil {
					return err
				}
				return printResource(cmd, result, "customer", customerRow)
			}

			results := runBulkOperation(ctx, args, concurrency, !flags.Quiet && !isJSON(cmd), cmd.ErrOrStderr(),
				func(ctx context.Context, id string) (any, error) {
					return fetchCustomer(ctx, client, id)
				})
			return printBulkResults(cmd, results, "customer", customerRow)
		}),
	}

	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum concurrent requests")
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}

func fetchCustomer(ctx context.Context, client *billing.Client, id string) (any, error) {
	result, err := client.At("customers").Read(ctx, billing.Args{"customer_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %s: %w", id, err)
	}
	return result, nil
}

func newCustomersCreateCmd() *cobra.Command {
	var fields []string
	var inputFile string
	var jsonBody string

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"new"},
		Short:   "Create a customer",
		Example: `  # From fields
  cfy customers create -f email=jane@example.com -f first_name=Jane -f last_name=Doe

  # From inline JSON
  cfy customers create -d '{"email":"jane@example.com","first_name":"Jane"}'

  # From a file, or - for stdin
  cfy customers create -i customer.json`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			data, err := buildRequestData(fields, inputFile, jsonBody)
			if err != nil {
				return err
			}
			if data == nil {
				return fmt.Errorf("no customer attributes given: use -f, -d or -i")
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			callArgs := billing.Args{"data": envelope("customer", data)}
			if flags.DryRun {
				req, err := client.At("customers", "create").Build(callArgs)
				if err != nil {
					return err
				}
				return printRequestPreview(cmd, req)
			}

			result, err := client.At("customers").Create(cmdContext(cmd), callArgs)
			if err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			printIfNotQuiet(cmd, "Created customer %s\n", stringField(unwrapResource(result, "customer"), "id"))
			return nil
		}),
	}

	addBodyFlags(cmd, &fields, &inputFile, &jsonBody)
	return cmd
}

func newCustomersUpdateCmd() *cobra.Command {
	var fields []string
	var inputFile string
	var jsonBody string

	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"edit"},
		Short:   "Update a customer",
		Example: `  cfy customers update 123 -f email=new@example.com
  cfy customers update 123 -d '{"last_name":"Smith"}'`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			data, err := buildRequestData(fields, inputFile, jsonBody)
			if err != nil {
				return err
			}
			if data == nil {
				return fmt.Errorf("no customer attributes given: use -f, -d or -i")
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			callArgs := billing.Args{
				"customer_id": args[0],
				"data":        envelope("customer", data),
			}
			result, err := client.At("customers").Update(cmdContext(cmd), callArgs)
			if err != nil {
				return fmt.Errorf("failed to update customer %s: %w", args[0], err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			printIfNotQuiet(cmd, "Updated customer %s\n", args[0])
			return nil
		}),
	}

	addBodyFlags(cmd, &fields, &inputFile, &jsonBody)
	return cmd
}

func newCustomersDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a customer",
		Example: `  cfy customers delete 123
  cfy customers delete 123 --yes`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ok, err := confirmAction(cmd, fmt.Sprintf("Delete customer %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				printIfNotQuiet(cmd, "Aborted\n")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			_, err = client.At("customers").Delete(cmdContext(cmd), billing.Args{"customer_id": args[0]})
			if err != nil {
				return fmt.Errorf("failed to delete customer %s: %w", args[0], err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"deleted": true, "id": args[0]})
			}
			printIfNotQuiet(cmd, "Deleted customer %s\n", args[0])
			return nil
		}),
	}

	return cmd
}

func customerName(c map[string]any) string {
	first := stringField(c, "first_name")
	last := stringField(c, "last_name")
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

func customerRow(c map[string]any) []string {
	return []string{
		stringField(c, "id"),
		stringField(c, "email"),
		customerName(c),
		stringField(c, "reference"),
	}
}

// addBodyFlags registers the shared body-construction flags on mutation
// commands.
func addBodyFlags(cmd *cobra.Command, fields *[]string, inputFile, jsonBody *string) {
	cmd.Flags().StringArrayVarP(fields, "field", "f", nil, "Attribute as key=value (JSON-typed values); repeatable")
	cmd.Flags().StringVarP(inputFile, "input", "i", "", "Read attributes from JSON file (use - for stdin)")
	cmd.Flags().StringVarP(jsonBody, "data", "d", "", "Attributes as inline JSON")
}

// envelope wraps attributes under their resource key unless they already
// carry it. The API expects {"customer": {...}} style bodies.
func envelope(resource string, data map[string]any) map[string]any {
	if len(data) == 1 {
		if _, ok := data[resource]; ok {
			return data
		}
	}
	return map[string]any{resource: data}
}

// unwrapList extracts the per-item resource maps from a list response of
// the form [{"customer": {...}}, ...].
func unwrapList(result any, resource string) []map[string]any {
	items, ok := result.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m := unwrapResource(item, resource); m != nil {
			out = append(out, m)
		}
	}
	return out
}

// unwrapResource extracts the inner map from {"customer": {...}} style
// responses, tolerating responses that are already unwrapped.
func unwrapResource(result any, resource string) map[string]any {
	m, ok := result.(map[string]any)
	if !ok {
		return nil
	}
	if inner, ok := m[resource].(map[string]any); ok {
		return inner
	}
	return m
}

// stringField renders a map value for table output. Numbers decoded from
// JSON arrive as float64; integral ones print without the decimal point.
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// printResource renders a single resource response as JSON or a one-row
// table.
func printResource(cmd *cobra.Command, result any, resource string, row func(map[string]any) []string) error {
	if isJSON(cmd) {
		return printJSON(cmd, result)
	}
	item := unwrapResource(result, resource)
	if item == nil {
		return outfmt.WriteJSON(cmd.OutOrStdout(), result)
	}
	f := outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	f.StartTable(resourceHeaders(resource))
	f.Row(row(item)...)
	return f.EndTable()
}

// printBulkResults renders the outcome of a concurrent multi-ID fetch.
func printBulkResults(cmd *cobra.Command, results []BulkResult, resource string, row func(map[string]any) []string) error {
	success, failure := countResults(results)

	if isJSON(cmd) {
		payload := make([]map[string]any, 0, len(results))
		for _, r := range results {
			entry := map[string]any{"id": r.ID, "success": r.Success}
			if r.Success {
				entry[resource] = unwrapResource(r.Data, resource)
			} else {
				entry["error"] = r.Error.Error()
			}
			payload = append(payload, entry)
		}
		if err := printJSON(cmd, map[string]any{
			"items":   payload,
			"success": success,
			"failure": failure,
		}); err != nil {
			return err
		}
	} else {
		f := outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		f.StartTable(resourceHeaders(resource))
		for _, r := range results {
			if r.Success {
				if item := unwrapResource(r.Data, resource); item != nil {
					f.Row(row(item)...)
				}
			}
		}
		if err := f.EndTable(); err != nil {
			return err
		}
		for _, r := range results {
			if !r.Success {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.ID, r.Error)
			}
		}
	}

	if failure > 0 {
		return fmt.Errorf("%d of %d fetches failed", failure, len(results))
	}
	return nil
}

func resourceHeaders(resource string) []string {
	switch resource {
	case "customer":
		return []string{"ID", "EMAIL", "NAME", "REFERENCE"}
	case "subscription":
		return []string{"ID", "STATE", "PRODUCT", "CUSTOMER", "BALANCE"}
	default:
		return []string{"ID"}
	}
}
