// Package discover enumerates candidate files under a project root.
//
// The external fd tool is preferred when present (it is fast and respects
// VCS ignores); a pure-Go walk with directory pruning is the fallback, so
// discovery never depends on anything outside the module.
package discover

import (
	"context"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxpack/internal/logging"
)

// Files returns the sorted absolute paths of every candidate file under
// root, excluding hidden VCS directories and anything matching an exclude
// pattern.
func Files(ctx context.Context, root string, excludes []string, log *logging.Logger) ([]string, error) {
	if paths := fdPaths(ctx, root, excludes); len(paths) > 0 {
		sort.Strings(paths)
		return paths, nil
	}
	log.Debug("fd unavailable, walking directory tree", zap.String("root", root))
	paths, err := walkPaths(root, excludes)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// fdPaths runs fd (or fdfind) if it is on PATH. Any failure returns nil
// so the caller falls back to the walk.
func fdPaths(ctx context.Context, root string, excludes []string) []string {
	exe, err := exec.LookPath("fd")
	if err != nil {
		exe, err = exec.LookPath("fdfind")
		if err != nil {
			return nil
		}
	}
	args := []string{"--hidden", "--ignore-vcs", "--type", "f", ".", root}
	for _, pat := range excludes {
		args = append(args, "--exclude", pat)
	}
	out, err := exec.CommandContext(ctx, exe, args...).Output()
	if err != nil {
		return nil
	}
	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// walkPaths is the pure-Go fallback. Excluded directories are pruned so
// large dependency trees are never descended into.
func walkPaths(root string, excludes []string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if IsExcluded(rel+"/", excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsExcluded(rel, excludes) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsExcluded reports whether a slash-normalized relative path matches an
// exclude pattern. Patterns ending in "/" are directory patterns matched
// by prefix or containment; everything else is a glob tried against the
// full path and the basename.
func IsExcluded(rel string, excludes []string) bool {
	base := rel
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		base = rel[idx+1:]
	}
	for _, pat := range excludes {
		if strings.HasSuffix(pat, "/") {
			if strings.HasPrefix(rel, pat) || strings.Contains(rel, "/"+pat) {
				return true
			}
			if rel == pat || rel == strings.TrimSuffix(pat, "/") {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, base); ok {
			return true
		}
	}
	return false
}
