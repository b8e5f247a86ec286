// Package offline is a request-intercepting cache in front of the web origin.
// A versioned bucket of assets is installed ahead of time; page loads go to the
// network first and fall back to the cached shell, other assets are served from
// the cache and refreshed in the background.
package offline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultVersion names the cache bucket of the current asset set
	DefaultVersion = "hourcal-v50"
	// DefaultShell is the manifest entry used as the offline page
	DefaultShell = "./index.html"
)

// DefaultAssets is the precached asset list, relative to the served scope.
var DefaultAssets = []string{
	"./",
	"./index.html",
	"./style.css?v=50",
	"./app.js?v=50",
	"./manifest.json",
	"./icon/icon-192.svg",
	"./icon/icon-512.svg",
}

// Manifest lists what one worker version precaches.
type Manifest struct {
	Version string   `json:"version"`
	Assets  []string `json:"assets"`
	Shell   string   `json:"shell"`
}

// DefaultManifest returns the manifest of the bundled web shell.
func DefaultManifest() Manifest {
	return Manifest{
		Version: DefaultVersion,
		Assets:  append([]string(nil), DefaultAssets...),
		Shell:   DefaultShell,
	}
}

// Validate checks the manifest can be installed.
func (m Manifest) Validate() error {
	if m.Version == "" {
		return errors.New("manifest version cannot be empty")
	}
	if strings.ContainsAny(m.Version, `/\`) {
		return fmt.Errorf("manifest version %q cannot contain path separators", m.Version)
	}
	if len(m.Assets) == 0 {
		return errors.New("manifest must list at least one asset")
	}
	if m.Shell == "" {
		return errors.New("manifest shell cannot be empty")
	}
	for _, a := range m.Assets {
		if _, err := url.Parse(a); err != nil {
			return fmt.Errorf("invalid asset URL %q: %w", a, err)
		}
	}
	return nil
}

// ParseScope parses the base path requests are resolved against. It always ends in "/".
func ParseScope(scope string) (*url.URL, error) {
	if scope == "" {
		scope = "/"
	}
	u, err := url.Parse(scope)
	if err != nil {
		return nil, fmt.Errorf("invalid scope %q: %w", scope, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// ResolveKey turns a manifest URL into the cache key of the request it stands for:
// the path and raw query relative to the host, e.g. "./style.css?v=50" under "/"
// becomes "/style.css?v=50".
func ResolveKey(scope *url.URL, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return requestKey(scope.ResolveReference(r)), nil
}

// RequestKey returns the cache key of an incoming request URL.
func RequestKey(u *url.URL) string {
	return requestKey(u)
}

func requestKey(u *url.URL) string {
	key := u.EscapedPath()
	if key == "" {
		key = "/"
	}
	if u.RawQuery != "" || u.ForceQuery {
		key += "?" + u.RawQuery
	}
	return key
}
