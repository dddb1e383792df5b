package discover

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxpack/internal/config"
)

func write(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))
}

func TestIsExcluded(t *testing.T) {
	excludes := config.DefaultExcludes

	tests := []struct {
		rel      string
		excluded bool
	}{
		{"node_modules/", true},
		{"node_modules/lodash/index.js", true},
		{"web/node_modules/", true},
		{"src/app.py", false},
		{"logo.png", true},
		{"assets/logo.png", true},
		{"bundle.min.js", true},
		{"dist/", true},
		{".git/", true},
		{"README.md", false},
		{"distances.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.excluded, IsExcluded(tt.rel, excludes))
		})
	}
}

func TestWalkPaths(t *testing.T) {
	root := t.TempDir()
	write(t, root, "src/app.py")
	write(t, root, "README.md")
	write(t, root, "node_modules/pkg/index.js")
	write(t, root, "assets/logo.png")
	write(t, root, ".git/config")

	paths, err := walkPaths(root, config.DefaultExcludes)
	require.NoError(t, err)

	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		rels = append(rels, filepath.ToSlash(rel))
	}
	sort.Strings(rels)

	assert.Equal(t, []string{"README.md", "src/app.py"}, rels)
}

func TestWalkPathsEmptyRoot(t *testing.T) {
	paths, err := walkPaths(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
