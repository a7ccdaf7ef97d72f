// Package endpoint resolves the base URL of the chat backend from an
// ordered set of sources: environment override, persisted config file,
// hardcoded default. Resolution happens once per process start and the
// result is immutable.
package endpoint

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvVar overrides every other source when set to a valid URL.
	EnvVar = "BUBBLECHAT_BACKEND_URL"

	// DefaultURL is the fallback when no source yields a usable URL.
	DefaultURL = "http://127.0.0.1:8000"

	configFileName = "backend-url"
)

// Endpoint is a normalized backend base URL: scheme+host+port with no
// trailing slash. It is never empty.
type Endpoint struct {
	URL    string
	Source string // "env", "file", or "default"
}

// ChatURL joins the endpoint with the chat path from the brand config.
func (e Endpoint) ChatURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return e.URL + path
}

// DefaultConfigPath returns the conventional location of the backend
// URL file. An empty string means no file source is available.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bubblechat", configFileName)
}

// Resolve returns the backend endpoint using the default environment
// and config file location.
func Resolve() Endpoint {
	return ResolveFrom(os.LookupEnv, DefaultConfigPath())
}

// ResolveFrom resolves the endpoint from an explicit environment lookup
// and config file path so tests can supply both. It never fails: every
// malformed or unreadable source is treated as absent and the next
// source is consulted, ending at DefaultURL.
func ResolveFrom(lookupEnv func(string) (string, bool), configPath string) Endpoint {
	if lookupEnv != nil {
		if raw, ok := lookupEnv(EnvVar); ok {
			if u, valid := normalize(raw); valid {
				return Endpoint{URL: u, Source: "env"}
			}
		}
	}
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if u, valid := normalize(string(data)); valid {
				return Endpoint{URL: u, Source: "file"}
			}
		}
	}
	return Endpoint{URL: DefaultURL, Source: "default"}
}

// normalize trims whitespace and trailing slashes and checks that the
// remainder parses as an absolute URL with a host.
func normalize(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return "", false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", false
	}
	return trimmed, true
}
