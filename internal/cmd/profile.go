package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chargify/chargify-cli/internal/config"
	"github.com/chargify/chargify-cli/internal/outfmt"
	"github.com/chargify/chargify-cli/internal/resolve"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles", "pr"},
		Short:   "Manage credential profiles",
		Long:    "List saved credential profiles, switch the active one, and inspect a profile.",
	}

	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileShowCmd())

	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved profiles",
		Example: "  cfy profile list",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				items := make([]map[string]any, 0, len(profiles))
				for _, p := range profiles {
					items = append(items, map[string]any{
						"name":    p,
						"current": p == current,
					})
				}
				return printJSON(cmd, items)
			}

			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles saved. Run 'cfy auth login --profile <name>' to create one.")
				return nil
			}

			f := outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			f.StartTable([]string{"NAME", "CURRENT"})
			for _, p := range profiles {
				marker := ""
				if p == current {
					marker = "*"
				}
				f.Row(p, marker)
			}
			return f.EndTable()
		}),
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Aliases: []string{"switch"},
		Short:   "Switch the active profile",
		Example: "  cfy profile use staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, err := config.LoadProfile(name); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					msg := fmt.Sprintf("profile %q not found", name)
					if profiles, perr := config.ListProfiles(); perr == nil {
						if suggestion := resolve.Suggest(name, profiles); suggestion != "" {
							msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
						}
					}
					return fmt.Errorf("%s", msg)
				}
				return fmt.Errorf("failed to load profile %q: %w", name, err)
			}

			if err := config.SetCurrentProfile(name); err != nil {
				return fmt.Errorf("failed to switch profile: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": name})
			}
			printIfNotQuiet(cmd, "Switched to profile %s\n", name)
			return nil
		}),
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [name]",
		Aliases: []string{"get"},
		Short:   "Show a profile's configuration",
		Example: "  cfy profile show\n  cfy profile show staging",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			} else if current, err := config.CurrentProfile(); err == nil {
				name = current
			}

			account, err := config.LoadProfile(name)
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					return fmt.Errorf("profile %q not found", name)
				}
				return fmt.Errorf("failed to load profile: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"name":      name,
					"subdomain": account.Subdomain,
					"api_key":   maskKey(account.APIKey),
					"format":    account.Format,
				})
			}

			out := cmd.OutOrStdout()
			if name != "" {
				_, _ = fmt.Fprintf(out, "Profile: %s\n", name)
			}
			_, _ = fmt.Fprintf(out, "  Subdomain: %s\n", account.Subdomain)
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", maskKey(account.APIKey))
			if account.Format != "" {
				_, _ = fmt.Fprintf(out, "  Format: %s\n", account.Format)
			}
			return nil
		}),
	}
}
