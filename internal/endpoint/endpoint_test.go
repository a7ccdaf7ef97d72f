package endpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envWith(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend-url")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestResolveEnvWinsOverFile(t *testing.T) {
	path := writeConfig(t, "http://file.example:9000\n")
	ep := ResolveFrom(envWith(map[string]string{EnvVar: "http://env.example:8080/"}), path)
	assert.Equal(t, "http://env.example:8080", ep.URL)
	assert.Equal(t, "env", ep.Source)
}

func TestResolveFileWhenEnvAbsent(t *testing.T) {
	path := writeConfig(t, "  http://file.example:9000//  \n")
	ep := ResolveFrom(envWith(nil), path)
	assert.Equal(t, "http://file.example:9000", ep.URL)
	assert.Equal(t, "file", ep.Source)
}

func TestResolveDefaultWhenAllSourcesAbsent(t *testing.T) {
	ep := ResolveFrom(envWith(nil), filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, DefaultURL, ep.URL)
	assert.Equal(t, "default", ep.Source)
}

func TestResolveMalformedSourcesFallThrough(t *testing.T) {
	path := writeConfig(t, "not a url at all")
	ep := ResolveFrom(envWith(map[string]string{EnvVar: "://nope"}), path)
	assert.Equal(t, DefaultURL, ep.URL)
}

func TestResolveEmptyEnvFallsThroughToFile(t *testing.T) {
	path := writeConfig(t, "https://chat.internal")
	ep := ResolveFrom(envWith(map[string]string{EnvVar: "   "}), path)
	assert.Equal(t, "https://chat.internal", ep.URL)
}

func TestResolveNeverEmptyNeverTrailingSlash(t *testing.T) {
	cases := []struct {
		env  map[string]string
		file string
	}{
		{nil, ""},
		{map[string]string{EnvVar: "http://a.example///"}, ""},
		{nil, "http://b.example/"},
		{map[string]string{EnvVar: "garbage"}, "garbage too"},
	}
	for _, tc := range cases {
		path := ""
		if tc.file != "" {
			path = writeConfig(t, tc.file)
		}
		ep := ResolveFrom(envWith(tc.env), path)
		require.NotEmpty(t, ep.URL)
		assert.NotRegexp(t, "/$", ep.URL)
	}
}

func TestChatURLJoinsPath(t *testing.T) {
	ep := Endpoint{URL: "http://x.example"}
	assert.Equal(t, "http://x.example/chat", ep.ChatURL("/chat"))
	assert.Equal(t, "http://x.example/chat", ep.ChatURL("chat"))
}
