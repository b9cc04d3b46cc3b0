package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chargify/chargify-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if isJSON(cmd) {
				payload := map[string]any{"version": version}
				if check {
					if result := update.CheckForUpdate(cmd.Context(), version); result != nil {
						payload["latest_version"] = result.LatestVersion
						payload["update_available"] = result.UpdateAvailable
						if result.UpdateAvailable {
							payload["update_url"] = result.UpdateURL
						}
					}
				}
				_ = printJSON(cmd, payload)
				return
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "chargify-cli version %s\n", version)

			if !check {
				return
			}
			// Update check fails silently; it must never break scripting.
			result := update.CheckForUpdate(cmd.Context(), version)
			switch {
			case result == nil:
			case result.UpdateAvailable:
				errOut := cmd.ErrOrStderr()
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", result.UpdateURL)
			default:
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "\nYou are on the latest version.")
			}
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	flagAlias(cmd.Flags(), "check", "ck")

	return cmd
}
