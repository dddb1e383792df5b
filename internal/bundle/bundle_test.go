package bundle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxpack/internal/corpus"
	"github.com/fyrsmithlabs/ctxpack/internal/logging"
	"github.com/fyrsmithlabs/ctxpack/internal/selector"
)

func testCorpus() *corpus.Corpus {
	c := corpus.NewCorpus()
	c.Add(&corpus.FileRecord{RelPath: "src/app.py", Content: "print('hello')\n", Loaded: true})
	c.Add(&corpus.FileRecord{RelPath: "docs/notes.md", Content: "# Notes\n", Loaded: true})
	c.Add(&corpus.FileRecord{RelPath: "pending.go"})
	return c
}

func TestInternalCXML(t *testing.T) {
	c := testCorpus()
	files := []selector.Ranked{
		{Priority: 100, Path: "src/app.py"},
		{Priority: 90, Path: "docs/notes.md"},
		{Priority: 80, Path: "pending.go"},
		{Priority: 70, Path: "ghost.txt"},
	}
	body := internalCXML(files, c)

	assert.True(t, strings.HasPrefix(body, "<files>"))
	assert.True(t, strings.HasSuffix(body, "</files>"))
	assert.Contains(t, body, `<file path="src/app.py">`)
	assert.Contains(t, body, "print('hello')")
	assert.Contains(t, body, `<file path="docs/notes.md">`)

	// Unloaded and unknown paths never appear.
	assert.NotContains(t, body, "pending.go")
	assert.NotContains(t, body, "ghost.txt")

	// Ordering follows the accepted list.
	assert.Less(t, strings.Index(body, "src/app.py"), strings.Index(body, "docs/notes.md"))
}

func TestBuild(t *testing.T) {
	a := New(logging.NewTestLogger().Logger)
	c := testCorpus()
	files := []selector.Ranked{{Priority: 100, Path: "src/app.py"}}

	system, user, err := a.Build(context.Background(), files, c, "What does app do?", "tiny overview")
	require.NoError(t, err)

	assert.Equal(t, AnalysisSystem, system)
	assert.True(t, strings.HasPrefix(user, "What does app do?\n\nPROJECT OVERVIEW:\ntiny overview\n\n"))
	assert.Contains(t, user, "src/app.py")
	assert.Contains(t, user, "print('hello')")
}

func TestBuildEmptySelection(t *testing.T) {
	a := New(nil)
	_, user, err := a.Build(context.Background(), nil, corpus.NewCorpus(), "req", "ov")
	require.NoError(t, err)
	assert.Contains(t, user, "req")
}
