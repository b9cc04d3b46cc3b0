package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chargify/chargify-cli/internal/billing"
	"github.com/chargify/chargify-cli/internal/config"
	"github.com/chargify/chargify-cli/internal/outfmt"
)

// getJQQuery returns the jq query from --jq or --query flags.
// --jq takes precedence over --query for consistency with gh CLI.
func getJQQuery() string {
	if flags.JQ != "" {
		return flags.JQ
	}
	return flags.Query
}

// newBillingClient builds a client from resolved credentials. It is a
// package-level variable so tests can substitute a stub transport.
var newBillingClient = func(cfg config.ClientConfig, opts ...billing.Option) (*billing.Client, error) {
	if cfg.Format != "" {
		opts = append(opts, billing.WithFormat(cfg.Format))
	}
	return billing.New(cfg.APIKey, cfg.Subdomain, opts...)
}

// getClient creates an API client from stored credentials, applying the
// global --subdomain/--format overrides.
func getClient() (*billing.Client, error) {
	cfg, err := config.ResolveClientConfig(flags.Subdomain, flags.Format)
	if err != nil {
		return nil, err
	}
	transport := billing.NewHTTPTransport(nil)
	if flags.Timeout > 0 {
		transport.HTTP.Timeout = flags.Timeout
	}
	return newBillingClient(cfg, billing.WithTransport(transport))
}

// cmdContext returns the command context for API calls
func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

// printJSON outputs data as JSON with optional query filtering
func printJSON(cmd *cobra.Command, v any) error {
	query := outfmt.GetQuery(cmd.Context())
	if outfmt.IsJSONL(cmd.Context()) {
		return outfmt.WriteJSONL(cmd.OutOrStdout(), v, query)
	}
	compact := outfmt.IsCompact(cmd.Context())
	return outfmt.WriteJSONFiltered(cmd.OutOrStdout(), v, query, compact)
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printIfNotQuiet prints to stdout only if not in quiet mode
func printIfNotQuiet(cmd *cobra.Command, format string, args ...any) {
	if !flags.Quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}

// confirmAction asks for a y/N confirmation unless --yes was given.
func confirmAction(cmd *cobra.Command, prompt string) (bool, error) {
	if flags.Yes {
		return true, nil
	}
	if isJSON(cmd) {
		return false, fmt.Errorf("--yes flag is required when using --output json")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprint(out, prompt)

	var response string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &response); err != nil {
		return false, nil
	}
	return strings.EqualFold(strings.TrimSpace(response), "y"), nil
}

// buildRequestData constructs the request data map from fields and/or an
// input file or inline JSON.
func buildRequestData(rawFields []string, inputFile, jsonBody string) (map[string]any, error) {
	body := make(map[string]any)

	if jsonBody != "" && inputFile != "" {
		return nil, fmt.Errorf("cannot use both --data and --input flags")
	}

	if jsonBody != "" {
		if err := json.Unmarshal([]byte(jsonBody), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --data JSON: %w", err)
		}
	}

	if inputFile != "" {
		var inputData []byte
		var err error
		if inputFile == "-" {
			inputData, err = io.ReadAll(os.Stdin)
		} else {
			inputData, err = os.ReadFile(inputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if err := json.Unmarshal(inputData, &body); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	for _, field := range rawFields {
		key, value, err := parseRawField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

// parseField parses a key=value field where value is a string
func parseField(field string) (string, string, error) {
	parts := strings.SplitN(field, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return parts[0], parts[1], nil
}

// parseRawField parses a key=value field where value is JSON; a value
// that fails to parse as JSON is kept as a plain string.
func parseRawField(field string) (string, any, error) {
	key, valueStr, err := parseField(field)
	if err != nil {
		return "", nil, err
	}
	var value any
	if jsonErr := json.Unmarshal([]byte(valueStr), &value); jsonErr != nil {
		value = valueStr
	}
	return key, value, nil
}

// printRequestPreview writes a dry-run request descriptor without
// executing it.
func printRequestPreview(cmd *cobra.Command, req billing.Request) error {
	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{
			"dry_run": true,
			"method":  req.Method,
			"url":     req.URL,
			"query":   req.Query,
			"body":    req.Body,
		})
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s %s\n", req.Method, req.URL)
	if len(req.Query) > 0 {
		_, _ = fmt.Fprintf(out, "  query: %v\n", req.Query)
	}
	if len(req.Body) > 0 {
		data, err := json.MarshalIndent(req.Body, "  ", "  ")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "  body: %s\n", data)
	}
	return nil
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed. This lets aliases satisfy Cobra's
// MarkFlagRequired check transparently.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

// flagAlias registers a hidden alias for an existing flag.
// Both flags share the same underlying Value, so setting either one sets both.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f // shallow copy, shares the Value interface
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	a.Value = &aliasBridgeValue{Value: f.Value, canonical: f}
	newAnn := map[string][]string{"alias-of": {name}}
	for k, v := range f.Annotations {
		if k == cobra.BashCompOneRequiredFlag {
			continue
		}
		newAnn[k] = v
	}
	a.Annotations = newAnn
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) {
		return true
	}
	if cmd.InheritedFlags().Changed(name) {
		return true
	}

	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if found {
				return
			}
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name {
				if fs.Changed(f.Name) {
					found = true
				}
			}
		})
		return found
	}

	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}
