// Package config stores API credentials in the OS keychain, with named
// profiles and environment-variable overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName       = "chargify-cli"
	accountKey        = "default"
	defaultProfile    = "default"
	profilePrefix     = "profile:"
	profileIndexKey   = "profiles_index"
	currentProfileKey = "current_profile"

	envKeyringBackend        = "CFY_KEYRING_BACKEND"
	envKeyringBackendLegacy  = "CHARGIFY_KEYRING_BACKEND"
	envKeyringPassword       = "CFY_KEYRING_PASSWORD"
	envKeyringPasswordLegacy = "CHARGIFY_KEYRING_PASSWORD"
	envCredentialsDir        = "CFY_CREDENTIALS_DIR"
	envCredentialsDirLegacy  = "CHARGIFY_CREDENTIALS_DIR"

	keyringBackendAuto   = "auto"
	keyringBackendFile   = "file"
	keyringBackendSystem = "system"
)

// Account holds the Chargify connection details
type Account struct {
	Subdomain string `json:"subdomain"`
	APIKey    string `json:"api_key"`
	Format    string `json:"format,omitempty"`
}

// ErrNotConfigured is returned when no account is configured
var ErrNotConfigured = errors.New("chargify not configured - run 'cfy auth login' first")

// openKeyring opens the backing keyring. Swapped for an in-memory
// keyring in tests via SetOpenKeyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

// SetOpenKeyring replaces the keyring opener and returns a restore
// function.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// LoadAccount resolves the active credentials. Environment variables
// take precedence, then the profile named by CHARGIFY_PROFILE, then the
// current stored profile.
func LoadAccount() (Account, error) {
	if subdomain := strings.TrimSpace(os.Getenv("CHARGIFY_SUBDOMAIN")); subdomain != "" {
		apiKey := strings.TrimSpace(os.Getenv("CHARGIFY_API_KEY"))
		if apiKey == "" {
			return Account{}, fmt.Errorf("environment variables CHARGIFY_SUBDOMAIN and CHARGIFY_API_KEY must both be set")
		}
		return Account{
			Subdomain: subdomain,
			APIKey:    apiKey,
			Format:    strings.TrimSpace(os.Getenv("CHARGIFY_FORMAT")),
		}, nil
	}

	if profile := strings.TrimSpace(os.Getenv("CHARGIFY_PROFILE")); profile != "" {
		return LoadProfile(profile)
	}

	current, err := CurrentProfile()
	if err != nil {
		return Account{}, err
	}
	return LoadProfile(current)
}

// SaveAccount stores credentials under the default profile.
func SaveAccount(account Account) error {
	return SaveProfile(defaultProfile, account)
}

// DeleteAccount removes the default profile.
func DeleteAccount() error {
	return DeleteProfile(defaultProfile)
}

// HasAccount reports whether any credentials resolve.
func HasAccount() bool {
	_, err := LoadAccount()
	return err == nil
}

// SaveProfile stores credentials under a named profile and makes that
// profile current.
func SaveProfile(profile string, account Account) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if profile == "" {
		profile = defaultProfile
	}
	if err := st.putProfile(profile, account); err != nil {
		return err
	}
	if err := st.addToIndex(profile); err != nil {
		return err
	}
	return st.setCurrent(profile)
}

// LoadProfile retrieves credentials for a named profile.
func LoadProfile(profile string) (Account, error) {
	st, err := openStore()
	if err != nil {
		return Account{}, err
	}
	return st.getProfile(profile)
}

// DeleteProfile removes a stored profile. Deleting a profile that does
// not exist is not an error. When the current profile is deleted the
// pointer moves to the first remaining profile, or back to default.
func DeleteProfile(profile string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if profile == "" {
		profile = defaultProfile
	}
	if err := st.dropProfile(profile); err != nil {
		return err
	}
	remaining, err := st.removeFromIndex(profile)
	if err != nil {
		return err
	}
	if current, err := st.current(); err == nil && current == profile {
		next := defaultProfile
		if len(remaining) > 0 {
			next = remaining[0]
		}
		_ = st.setCurrent(next)
	}
	return nil
}

// ListProfiles returns the known profile names. A pre-index credential
// saved under the default key still lists as "default".
func ListProfiles() ([]string, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	profiles, err := loadProfileIndex(st.ring)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		if _, err := st.ring.Get(accountKey); err == nil {
			return []string{defaultProfile}, nil
		}
	}
	return profiles, nil
}

// CurrentProfile returns the active profile name.
func CurrentProfile() (string, error) {
	st, err := openStore()
	if err != nil {
		return "", err
	}
	return st.current()
}

// SetCurrentProfile sets the active profile name.
func SetCurrentProfile(profile string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if profile == "" {
		profile = defaultProfile
	}
	return st.setCurrent(profile)
}

// store wraps an open keyring with the profile storage scheme: the
// default profile lives under the bare account key for compatibility
// with pre-profile versions, named profiles under a prefixed key, and
// a JSON list of names under the index key.
type store struct {
	ring keyring.Keyring
}

func openStore() (*store, error) {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &store{ring: ring}, nil
}

func (s *store) getProfile(name string) (Account, error) {
	item, err := s.ring.Get(profileKey(name))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return Account{}, ErrNotConfigured
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to read profile: %w", err)
	}
	var account Account
	if err := json.Unmarshal(item.Data, &account); err != nil {
		return Account{}, fmt.Errorf("stored profile is corrupt: %w", err)
	}
	return account, nil
}

func (s *store) putProfile(name string, account Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	if err := s.ring.Set(keyring.Item{Key: profileKey(name), Data: data}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *store) dropProfile(name string) error {
	err := s.ring.Remove(profileKey(name))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove profile: %w", err)
	}
	return nil
}

func (s *store) addToIndex(name string) error {
	profiles, err := loadProfileIndex(s.ring)
	if err != nil {
		return err
	}
	return s.writeIndex(normalizeProfiles(append(profiles, name)))
}

func (s *store) removeFromIndex(name string) ([]string, error) {
	profiles, err := loadProfileIndex(s.ring)
	if err != nil {
		return nil, err
	}
	remaining := profiles[:0]
	for _, p := range profiles {
		if p != name {
			remaining = append(remaining, p)
		}
	}
	return remaining, s.writeIndex(remaining)
}

func (s *store) writeIndex(profiles []string) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to encode profile index: %w", err)
	}
	return s.ring.Set(keyring.Item{Key: profileIndexKey, Data: data})
}

func (s *store) current() (string, error) {
	item, err := s.ring.Get(currentProfileKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return defaultProfile, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current profile: %w", err)
	}
	return string(item.Data), nil
}

func (s *store) setCurrent(name string) error {
	return s.ring.Set(keyring.Item{Key: currentProfileKey, Data: []byte(name)})
}

func profileKey(name string) string {
	if name == "" || name == defaultProfile {
		return accountKey
	}
	return profilePrefix + name
}

func loadProfileIndex(ring keyring.Keyring) ([]string, error) {
	item, err := ring.Get(profileIndexKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile index: %w", err)
	}
	var profiles []string
	if err := json.Unmarshal(item.Data, &profiles); err != nil {
		return nil, fmt.Errorf("profile index is corrupt: %w", err)
	}
	return profiles, nil
}

func normalizeProfiles(profiles []string) []string {
	seen := make(map[string]struct{}, len(profiles))
	var out []string
	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// keyringConfig decides which keyring backend to use. File backend
// details are always filled in so auto mode can fall through to
// encrypted file storage when no native backend is available; headless
// Linux (no D-Bus session) is pinned to the file backend outright.
func keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}

	backend := keyringBackendMode()
	if backend == keyringBackendSystem {
		return cfg
	}

	cfg.FileDir = keyringFileDir()
	cfg.FilePasswordFunc = keyringFilePassword

	if shouldForceFileBackend(runtime.GOOS, backend, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func keyringBackendMode() string {
	switch strings.ToLower(firstNonBlankEnv(envKeyringBackend, envKeyringBackendLegacy)) {
	case keyringBackendFile:
		return keyringBackendFile
	case keyringBackendSystem, "os", "native":
		return keyringBackendSystem
	default:
		return keyringBackendAuto
	}
}

func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	if backend == keyringBackendFile {
		return true
	}
	return backend == keyringBackendAuto && goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

func keyringFileDir() string {
	base := firstNonBlankEnv(envCredentialsDir, envCredentialsDirLegacy)
	if base == "" {
		if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = filepath.Join(dir, serviceName)
		}
	}
	if base == "" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			base = filepath.Join(home, ".config", serviceName)
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), serviceName)
	}
	return filepath.Join(base, "keyring")
}

func keyringFilePassword(prompt string) (string, error) {
	if password, ok := firstNonBlankSecretEnv(envKeyringPassword, envKeyringPasswordLegacy); ok {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s when using file keyring in non-interactive environments", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func firstNonBlankEnv(keys ...string) string {
	for _, key := range keys {
		if trimmed := strings.TrimSpace(os.Getenv(key)); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstNonBlankSecretEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}
