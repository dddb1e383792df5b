package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxpack/internal/logging"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsSecretBlocklisted(t *testing.T) {
	tests := []struct {
		path    string
		blocked bool
	}{
		{".env", true},
		{".env.local", true},
		{"config/.env", true},
		{"certs/server.pem", true},
		{"id_rsa", true},
		{".ssh/id_rsa.pub", true},
		{"secrets.yaml", true},
		{"signing.key", true},
		{"app.p12", true},
		{"release.keystore", true},
		{"home/.aws/credentials", true},
		{"gcloud/application_default.json", true},
		{"src/app.py", false},
		{"README.md", false},
		{"environment.ts", false},
		{"keyboard.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.blocked, IsSecretBlocklisted(tt.path))
		})
	}
}

func TestFilter(t *testing.T) {
	root := t.TempDir()
	small := writeFile(t, root, "src/app.py", "print('hello')\n")
	big := writeFile(t, root, "big.dat", strings.Repeat("x", 2048))
	env := writeFile(t, root, ".env", "SECRET=shhhh")
	missing := filepath.Join(root, "vanished.txt")

	cfg := FilterConfig{FileCapBytes: 1024, AllowSecrets: false}

	t.Run("classifies oversized, blocked, and admitted", func(t *testing.T) {
		log := logging.NewTestLogger()
		c, blocked := Filter([]string{small, big, env, missing}, root, cfg, log.Logger)

		require.Equal(t, 1, c.Len())
		assert.True(t, c.Has("src/app.py"))
		assert.False(t, c.Has("big.dat"))
		assert.False(t, c.Has(".env"))
		assert.Equal(t, []string{".env"}, blocked)

		log.AssertLogged(t, "SKIPPED (too large)")
		log.AssertLogged(t, "BLOCKED (secret)")
	})

	t.Run("stat failure drops path silently", func(t *testing.T) {
		log := logging.NewTestLogger()
		c, _ := Filter([]string{missing}, root, cfg, log.Logger)
		assert.Equal(t, 0, c.Len())
		assert.Empty(t, log.All())
	})

	t.Run("allow-secrets admits env files", func(t *testing.T) {
		log := logging.NewTestLogger()
		c, blocked := Filter([]string{env}, root, FilterConfig{FileCapBytes: 1024, AllowSecrets: true}, log.Logger)
		assert.True(t, c.Has(".env"))
		assert.Empty(t, blocked)
	})

	t.Run("admitted record has no content yet", func(t *testing.T) {
		log := logging.NewTestLogger()
		c, _ := Filter([]string{small}, root, cfg, log.Logger)
		rec := c.Get("src/app.py")
		require.NotNil(t, rec)
		assert.False(t, rec.Loaded)
		assert.Equal(t, int64(15), rec.SizeBytes)
	})

	t.Run("insertion order preserved", func(t *testing.T) {
		log := logging.NewTestLogger()
		extra := writeFile(t, root, "a/zz.txt", "z")
		c, _ := Filter([]string{small, extra}, root, cfg, log.Logger)
		assert.Equal(t, []string{"src/app.py", "a/zz.txt"}, c.Paths())
	})
}
