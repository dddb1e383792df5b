// Package overview produces the compact project summary fed to every
// ranking call and included in the final bundle.
package overview

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// readmeCapBytes limits how much of each README is included.
	readmeCapBytes = 200_000

	// treeDepth bounds how deep the directory summary descends.
	treeDepth = 4

	// treeMaxLines caps the directory summary length.
	treeMaxLines = 2000
)

// Build assembles the overview: all README contents followed by a
// depth-bounded directory tree with per-directory file counts and sizes.
func Build(root string) string {
	var parts []string
	if readmes := listReadmes(root); len(readmes) > 0 {
		var b strings.Builder
		b.WriteString("READMEs:\n")
		for i, p := range readmes {
			if i > 0 {
				b.WriteString("\n")
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				rel = p
			}
			fmt.Fprintf(&b, "## %s\n%s", filepath.ToSlash(rel), readCapped(p, readmeCapBytes))
		}
		parts = append(parts, b.String())
	}
	parts = append(parts, "COMPACT DIRECTORY TREE (counts, sizes):\n"+compactTree(root, treeDepth, treeMaxLines))
	return strings.Join(parts, "\n\n")
}

// listReadmes finds every README* file under root, sorted.
func listReadmes(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasPrefix(strings.ToUpper(d.Name()), "README") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}

// readCapped reads at most max bytes of a file, lossily decoded.
func readCapped(path string, max int64) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, max))
	if err != nil {
		return ""
	}
	return strings.ToValidUTF8(string(data), "�")
}

// dirStat holds direct-children stats for one directory.
type dirStat struct {
	files int
	size  int64
}

// compactTree renders the directory hierarchy down to depth levels, one
// line per directory with its direct file count and total size.
func compactTree(root string, depth, maxLines int) string {
	root, err := filepath.Abs(root)
	if err != nil {
		return ""
	}
	stats := dirStats(root)

	var lines []string
	var helper func(path string, level int)
	helper = func(path string, level int) {
		if level > depth || len(lines) >= maxLines {
			return
		}
		st := stats[path]
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return
		}
		if rel != "." {
			rel = filepath.ToSlash(rel)
		}
		lines = append(lines, fmt.Sprintf("%s/ (files=%d, size=%s)", rel, st.files, humanize.Bytes(uint64(st.size))))

		entries, err := os.ReadDir(path)
		if err != nil {
			return
		}
		var dirs []string
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(dirs)
		for _, d := range dirs {
			if len(lines) >= maxLines {
				break
			}
			helper(d, level+1)
		}
	}
	helper(root, 1)
	if len(lines) >= maxLines {
		lines = append(lines, "… (truncated)")
	}
	return strings.Join(lines, "\n")
}

// dirStats collects per-directory direct-file counts and sizes.
func dirStats(root string) map[string]dirStat {
	stats := make(map[string]dirStat)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		dir := filepath.Dir(path)
		st := stats[dir]
		st.files++
		st.size += info.Size()
		stats[dir] = st
		return nil
	})
	return stats
}
