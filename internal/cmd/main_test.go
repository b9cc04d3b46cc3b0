package cmd

import (
	"os"
	"testing"

	"github.com/99designs/keyring"

	"github.com/chargify/chargify-cli/internal/config"
)

func TestMain(m *testing.M) {
	// Pin text output so a CHARGIFY_OUTPUT from the shell cannot leak into
	// test expectations.
	_ = os.Setenv("CHARGIFY_OUTPUT", "text")

	cleanup := config.SetOpenKeyring(func(cfg keyring.Config) (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(nil), nil
	})
	code := m.Run()
	cleanup()
	os.Exit(code)
}
