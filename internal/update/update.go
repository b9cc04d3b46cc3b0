// Package update performs a best-effort lookup of the newest published
// release so the version command can hint at upgrades.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// GitHubReleasesURL points at the latest-release endpoint for this CLI.
// Swapped out in tests.
var GitHubReleasesURL = "https://api.github.com/repos/chargify/chargify-cli/releases/latest"

// CheckTimeout caps how long the release lookup may hold up the version
// command.
const CheckTimeout = 5 * time.Second

// CheckResult compares the running build against the newest release.
type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateURL       string
	UpdateAvailable bool
}

type latestRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckForUpdate reports whether a newer release exists. A nil result
// means the question could not be answered: dev builds, network trouble,
// and malformed responses all short-circuit silently, because an upgrade
// hint is never worth failing a command over.
func CheckForUpdate(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "" || currentVersion == "dev" {
		return nil
	}

	release, err := fetchLatest(ctx)
	if err != nil {
		return nil
	}

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}
	current, latest := canonical(currentVersion), canonical(release.TagName)
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func fetchLatest(ctx context.Context) (*latestRelease, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, GitHubReleasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("releases endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var release latestRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// canonical prefixes the leading v that semver comparison requires.
func canonical(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
