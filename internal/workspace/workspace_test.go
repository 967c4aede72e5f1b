package workspace

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLanguageForPath(t *testing.T) {
	tests := map[string]string{
		"main.py":      schema.CheckedLanguage,
		"stubs.pyi":    schema.CheckedLanguage,
		"SCRIPT.PY":    schema.CheckedLanguage,
		"README.md":    PlainTextLanguage,
		"Makefile":     PlainTextLanguage,
		"archive.py.x": PlainTextLanguage,
	}
	for path, want := range tests {
		assert.Equal(t, want, LanguageForPath(path), path)
	}
}

func TestDocument_Lines(t *testing.T) {
	doc := NewDocument("/w/a.py", "", "import os\r\nx = 1\n\ty = 'é'")
	assert.Equal(t, schema.CheckedLanguage, doc.LanguageID())
	assert.Equal(t, 3, doc.LineCount())

	line, ok := doc.LineText(0)
	assert.True(t, ok)
	assert.Equal(t, "import os", line, "carriage return is stripped")

	line, ok = doc.LineText(2)
	assert.True(t, ok)
	assert.Equal(t, "\ty = 'é'", line)

	_, ok = doc.LineText(3)
	assert.False(t, ok)
	_, ok = doc.LineText(-1)
	assert.False(t, ok)

	doc.SetText("only")
	assert.Equal(t, 1, doc.LineCount())
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "a\nb\n")

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path())
	assert.Equal(t, 3, doc.LineCount())

	_, err = LoadDocument(filepath.Join(dir, "missing.py"))
	assert.Error(t, err)
}

func TestWorkspace_OpenSaveClose(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")
	ws := New()

	var opened, saved, closed []string
	subs := []contract.Subscription{
		ws.OnDidOpen(func(d contract.Document) { opened = append(opened, d.Path()) }),
		ws.OnDidSave(func(d contract.Document) { saved = append(saved, d.Path()) }),
		ws.OnDidClose(func(d contract.Document) { closed = append(closed, d.Path()) }),
	}

	doc, err := ws.Open(path)
	require.NoError(t, err)
	again, err := ws.Open(path)
	require.NoError(t, err)
	assert.Same(t, doc, again, "reopening returns the same document")
	assert.Equal(t, []string{path}, opened, "open fires once")

	found, ok := ws.FindDocument(path)
	require.True(t, ok)
	assert.Equal(t, path, found.Path())

	require.NoError(t, os.WriteFile(path, []byte("x = 1\ny = 2\n"), 0o644))
	require.NoError(t, ws.Save(path))
	assert.Equal(t, []string{path}, saved)
	assert.Equal(t, 3, doc.LineCount(), "save reloads content")

	ws.Close(path)
	assert.Equal(t, []string{path}, closed)
	_, ok = ws.FindDocument(path)
	assert.False(t, ok)
	assert.Error(t, ws.Save(path), "saving a closed document fails")

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	assert.Zero(t, ws.SubscriberCount())
}

func TestWorkspace_Visibility(t *testing.T) {
	ws := New()
	a := ws.OpenDocument(NewDocument("/w/a.py", "", "a"))
	ws.OpenDocument(NewDocument("/w/b.py", "", "b"))

	var events [][]string
	sub := ws.OnDidChangeVisibleViews(func(views []contract.View) {
		var paths []string
		for _, v := range views {
			paths = append(paths, v.Path())
		}
		events = append(events, paths)
	})
	defer sub.Unsubscribe()

	_, ok := ws.VisibleView(a.Path())
	assert.False(t, ok)

	ws.Show("/w/b.py", "/w/a.py", "/w/unknown.py")
	require.Len(t, events, 1)
	assert.Equal(t, []string{"/w/a.py", "/w/b.py"}, events[0], "views follow open order")

	ws.Show("/w/a.py")
	assert.Len(t, events, 1, "already visible raises nothing")

	view, ok := ws.View("/w/a.py")
	require.True(t, ok)
	view.SetHighlights([]schema.Range{schema.FullLineRange(0, 1)})
	assert.Len(t, view.Highlights(), 1)
	view.ClearHighlights()
	assert.Empty(t, view.Highlights())

	ws.Hide("/w/a.py")
	require.Len(t, events, 2)
	assert.Equal(t, []string{"/w/b.py"}, events[1])

	ws.Close("/w/b.py")
	require.Len(t, events, 3, "closing a visible document hides it")
	assert.Empty(t, events[2])
}

func TestCollection(t *testing.T) {
	c := NewCollection()
	diags := []schema.Diagnostic{{Message: "E501 line too long", Source: schema.SourceTag}}

	c.Set("/w/b.py", diags)
	c.Set("/w/a.py", nil)
	got, ok := c.Get("/w/b.py")
	require.True(t, ok)
	assert.Equal(t, diags, got)
	assert.Equal(t, []string{"/w/a.py", "/w/b.py"}, c.Paths())
	assert.Equal(t, 1, c.Total())

	c.Set("/w/b.py", []schema.Diagnostic{})
	assert.Zero(t, c.Total(), "set replaces")

	c.Delete("/w/b.py")
	_, ok = c.Get("/w/b.py")
	assert.False(t, ok)
}

func TestWatcher_SavesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "x = 1\n")
	other := writeFile(t, dir, "notes.txt", "")

	ws := New()
	_, err := ws.Open(path)
	require.NoError(t, err)

	var saves atomic.Int32
	sub := ws.OnDidSave(func(contract.Document) { saves.Add(1) })
	defer sub.Unsubscribe()

	w, err := NewWatcher(ws, 200*time.Millisecond, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	defer w.Stop()

	// A burst of writes collapses into one save
	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("x = "+string(rune('1'+i))+"\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))

	require.Eventually(t, func() bool { return saves.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), saves.Load())

	doc, _ := ws.FindDocument(path)
	line, _ := doc.LineText(0)
	assert.Equal(t, "x = 3", line)
}
