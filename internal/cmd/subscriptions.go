package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chargify/chargify-cli/internal/billing"
	"github.com/chargify/chargify-cli/internal/outfmt"
)

func newSubscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subscription", "subs", "su"},
		Short:   "Manage subscriptions",
		Long:    "List and fetch subscriptions, and work with metered component usages",
	}

	cmd.AddCommand(newSubscriptionsListCmd())
	cmd.AddCommand(newSubscriptionsGetCmd())
	cmd.AddCommand(newUsagesCmd())

	return cmd
}

func newSubscriptionsListCmd() *cobra.Command {
	var page int
	var perPage int
	var state string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscriptions",
		Example: `  cfy subscriptions list
  cfy subscriptions list --state active --page 2
  cfy subscriptions list --output json --jq '.[].subscription.state'`,
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
			if state != "" {
				callArgs["state"] = state
			}

			chain := client.At("subscriptions")
			if flags.DryRun {
				req, err := chain.Build(callArgs)
				if err != nil {
					return err
				}
				return printRequestPreview(cmd, req)
			}

			result, err := chain.Call(cmdContext(cmd), callArgs)
			if err != nil {
				return fmt.Errorf("failed to list subscriptions: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, result)
			}

			subs := unwrapList(result, "subscription")
			f := outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if len(subs) == 0 {
				f.Empty("No subscriptions found")
				return nil
			}
			f.StartTable(resourceHeaders("subscription"))
			for _, s := range subs {
				f.Row(subscriptionRow(s)...)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().IntVar(&page, "page", 0, "Result page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Results per page")
	cmd.Flags().StringVar(&state, "state", "", "Filter by subscription state (e.g., active, canceled, past_due)")
	flagAlias(cmd.Flags(), "per-page", "pp")
	flagAlias(cmd.Flags(), "state", "st")

	return cmd
}

func newSubscriptionsGetCmd() *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:     "get <id>...",
		Aliases: []string{"g", "show"},
		Short:   "Get one or more subscriptions by ID",
		Example: `  cfy subscriptions get 123
  cfy subscriptions get 123 456 --output json --jq '.items[].subscription.state'`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			if len(args) == 1 {
				result, err := fetchSubscription(ctx, client, args[0])
				if err != nil {
					return err
				}
				return printResource(cmd, result, "subscription", subscriptionRow)
			}

			results := runBulkOperation(ctx, args, concurrency, !flags.Quiet && !isJSON(cmd), cmd.ErrOrStderr(),
				func(ctx context.Context, id string) (any, error) {
					return fetchSubscription(ctx, client, id)
				})
			return printBulkResults(cmd, results, "subscription", subscriptionRow)
		}),
	}

	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Maximum concurrent requests")
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}

func fetchSubscription(ctx context.Context, client *billing.Client, id string) (any, error) {
	result, err := client.At("subscriptions").Read(ctx, billing.Args{"subscription_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription %s: %w", id, err)
	}
	return result, nil
}

func newUsagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "usages",
		Aliases: []string{"usage"},
		Short:   "Work with metered component usages",
	}

	cmd.AddCommand(newUsagesListCmd())
	cmd.AddCommand(newUsagesRecordCmd())

	return cmd
}

func newUsagesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <subscription-id> <component-id>",
		Short: "List usages for a metered component",
		Example: `  cfy subscriptions usages list 123 456
  cfy subscriptions usages list 123 456 --output json --jq '.[].usage.quantity'`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			callArgs := billing.Args{
				"subscription_id": args[0],
				"component_id":    args[1],
			}
			chain := client.At("subscriptions", "components", "usages")
			if flags.DryRun {
				req, err := chain.Build(callArgs)
				if err != nil {
					return err
				}
				return printRequestPreview(cmd, req)
			}

			result, err := chain.Call(cmdContext(cmd), callArgs)
			if err != nil {
				return fmt.Errorf("failed to list usages: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, result)
			}

			usages := unwrapList(result, "usage")
			f := outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if len(usages) == 0 {
				f.Empty("No usages found")
				return nil
			}
			f.StartTable([]string{"ID", "QUANTITY", "MEMO"})
			for _, u := range usages {
				f.Row(
					stringField(u, "id"),
					stringField(u, "quantity"),
					stringField(u, "memo"),
				)
			}
			return f.EndTable()
		}),
	}

	return cmd
}

func newUsagesRecordCmd() *cobra.Command {
	var quantity string
	var memo string

	cmd := &cobra.Command{
		Use:     "record <subscription-id> <component-id>",
		Aliases: []string{"create"},
		Short:   "Record a usage for a metered component",
		Example: `  cfy subscriptions usages record 123 456 --quantity 5
  cfy subscriptions usages record 123 456 --quantity 5 --memo "batch import"`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}

			usage := map[string]any{"quantity": quantity}
			if memo != "" {
				usage["memo"] = memo
			}
			callArgs := billing.Args{
				"subscription_id": args[0],
				"component_id":    args[1],
				"data":            map[string]any{"usage": usage},
			}

			chain := client.At("subscriptions", "components", "usages")
			if flags.DryRun {
				req, err := chain.At("create").Build(callArgs)
				if err != nil {
					return err
				}
				return printRequestPreview(cmd, req)
			}

			result, err := chain.Create(cmdContext(cmd), callArgs)
			if err != nil {
				return fmt.Errorf("failed to record usage: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			printIfNotQuiet(cmd, "Recorded usage of %s on component %s\n", quantity, args[1])
			return nil
		}),
	}

	cmd.Flags().StringVarP(&quantity, "quantity", "n", "", "Usage quantity to record (required)")
	cmd.Flags().StringVarP(&memo, "memo", "m", "", "Optional memo attached to the usage")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}

func subscriptionRow(s map[string]any) []string {
	product := ""
	if p, ok := s["product"].(map[string]any); ok {
		product = stringField(p, "name")
	}
	customer := ""
	if c, ok := s["customer"].(map[string]any); ok {
		customer = stringField(c, "email")
	}
	return []string{
		stringField(s, "id"),
		stringField(s, "state"),
		product,
		customer,
		stringField(s, "balance_in_cents"),
	}
}
