package config

import (
	"fmt"
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Subdomain string
	APIKey    string
	Format    string
}

// ResolveClientConfig resolves client settings from the stored account,
// applying command-line overrides last.
func ResolveClientConfig(subdomainOverride, formatOverride string) (ClientConfig, error) {
	account, err := LoadAccount()
	if err != nil && subdomainOverride == "" {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{
		Subdomain: account.Subdomain,
		APIKey:    account.APIKey,
		Format:    account.Format,
	}

	if subdomainOverride != "" {
		cfg.Subdomain = strings.TrimSpace(subdomainOverride)
	}
	if formatOverride != "" {
		cfg.Format = strings.TrimSpace(formatOverride)
	}

	if cfg.Subdomain == "" {
		return ClientConfig{}, fmt.Errorf("subdomain not configured (set CHARGIFY_SUBDOMAIN, run 'cfy auth login', or pass --subdomain)")
	}
	if cfg.APIKey == "" {
		return ClientConfig{}, fmt.Errorf("API key not configured (set CHARGIFY_API_KEY or run 'cfy auth login')")
	}

	return cfg, nil
}
