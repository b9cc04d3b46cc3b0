package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chargify/chargify-cli/internal/billing"
	"github.com/chargify/chargify-cli/internal/config"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Configure and manage Chargify API credentials stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		apiKey  string
		profile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save API credentials",
		Long: strings.TrimSpace(`
Save Chargify API credentials securely to your OS keychain.

You'll need:
- Subdomain: The site subdomain from https://{subdomain}.chargify.com
- API Key: Generate from Config > Integrations > API Keys

Optional:
- Profile: Save multiple sites and switch between them
- Format: Response format, json (default) or xml
`),
		Example: strings.TrimSpace(`
  # Save credentials
  cfy auth login --subdomain acme --api-key YOUR_API_KEY

  # Save to a named profile
  cfy auth login --subdomain acme-staging --api-key STAGING_KEY --profile staging
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			// Subdomain and format come from the global persistent flags.
			subdomain := flags.Subdomain
			if subdomain == "" {
				return fmt.Errorf("--subdomain is required")
			}
			if apiKey == "" {
				return fmt.Errorf("--api-key is required")
			}
			if strings.ContainsAny(subdomain, "./:") {
				return fmt.Errorf("invalid subdomain %q: give the bare site subdomain, not a URL", subdomain)
			}
			format := flags.Format
			if format != "" {
				if _, err := billing.ParseFormat(format); err != nil {
					return err
				}
			}

			account := config.Account{
				Subdomain: subdomain,
				APIKey:    apiKey,
				Format:    format,
			}
			if err := config.SaveProfile(profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Credentials saved successfully!")
			_, _ = fmt.Fprintf(out, "  Subdomain: %s\n", subdomain)
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", maskKey(apiKey))
			if profile != "" && profile != "default" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().StringVar(&profile, "profile", "default", "Profile name to save credentials under")
	flagAlias(cmd.Flags(), "api-key", "key")
	flagAlias(cmd.Flags(), "profile", "pf")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the currently saved authentication configuration (the API key is masked).",
		Example: strings.TrimSpace(`
  # Check authentication status
  cfy auth status

  # JSON output for scripting
  cfy auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			envSubdomain := strings.TrimSpace(os.Getenv("CHARGIFY_SUBDOMAIN"))
			envAPIKey := strings.TrimSpace(os.Getenv("CHARGIFY_API_KEY"))
			usingEnv := envSubdomain != "" || envAPIKey != ""

			account, err := config.LoadAccount()
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'cfy auth login' to configure credentials.",
						})
					}
					out := cmd.OutOrStdout()
					_, _ = fmt.Fprintln(out, "Not authenticated.")
					_, _ = fmt.Fprintln(out, "Run 'cfy auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			var profile string
			if !usingEnv {
				if current, err := config.CurrentProfile(); err == nil {
					profile = current
				}
			}

			format := account.Format
			if format == "" {
				format = string(billing.FormatJSON)
			}

			if isJSON(cmd) {
				payload := map[string]any{
					"authenticated": true,
					"subdomain":     account.Subdomain,
					"api_key":       maskKey(account.APIKey),
					"format":        format,
					"source":        map[bool]string{true: "env", false: "keychain"}[usingEnv],
				}
				if profile != "" {
					payload["profile"] = profile
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  Subdomain: %s\n", account.Subdomain)
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", maskKey(account.APIKey))
			_, _ = fmt.Fprintf(out, "  Format: %s\n", format)
			if profile != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			if usingEnv {
				_, _ = fmt.Fprintln(out, "  Source: env")
			}
			return nil
		}),
	}

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove credentials from keychain",
		Long:  "Delete the stored API credentials from your OS keychain.",
		Example: strings.TrimSpace(`
  # Remove stored credentials
  cfy auth logout
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if profile == "" {
				if current, err := config.CurrentProfile(); err == nil {
					profile = current
				}
			}

			if profile == "" && !config.HasAccount() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
				return nil
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			if profile == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed successfully.")
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed successfully.\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Profile name to remove (defaults to current)")
	flagAlias(cmd.Flags(), "profile", "pf")

	return cmd
}

// maskKey masks an API key for display, showing only first and last 4 characters
func maskKey(key string) string {
	if len(key) < 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
