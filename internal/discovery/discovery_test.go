package discovery

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/surfpub/pkg/errors"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func names(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestFind(t *testing.T) {
	fs := memFS(t, map[string]string{
		"work/zeta-map.insert":        "z",
		"work/alpha-map.insert":       "a",
		"work/nested/beta-map.insert": "b",
		"work/notes.txt":              "n",
		"work/insert":                 "no dot",
		"work/gamma.insert.bak":       "backup",
	})

	files, err := NewFinder(fs, "work", "").Find(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"./alpha-map.insert",
		"./nested/beta-map.insert",
		"./zeta-map.insert",
	}, names(files))
	assert.Equal(t, "work/alpha-map.insert", files[0].Path)
}

func TestFindDefaultRoot(t *testing.T) {
	fs := memFS(t, map[string]string{
		"b.insert": "b",
		"a.insert": "a",
	})

	f := NewFinder(fs, "", "")
	assert.Equal(t, "./", f.Root())

	files, err := f.Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"./a.insert", "./b.insert"}, names(files))
}

func TestFindCustomSuffix(t *testing.T) {
	fs := memFS(t, map[string]string{
		"r/a.html":   "a",
		"r/b.insert": "b",
	})

	files, err := NewFinder(fs, "r", ".html").Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"./a.html"}, names(files))
}

func TestFindEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("empty", 0o755))

	files, err := NewFinder(fs, "empty", "").Find(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindMissingRoot(t *testing.T) {
	_, err := NewFinder(afero.NewMemMapFs(), "missing", "").Find(context.Background())
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestFindCanceled(t *testing.T) {
	fs := memFS(t, map[string]string{"r/a.insert": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFinder(fs, "r", "").Find(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead(t *testing.T) {
	fs := memFS(t, map[string]string{
		"r/a.insert": "&lt;table&gt;&amp;&quot;x&quot;&lt;/table&gt;",
	})
	f := NewFinder(fs, "r", "")

	files, err := f.Find(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	content, err := f.Read(files[0])
	require.NoError(t, err)
	assert.Equal(t, `<table>&"x"</table>`, content)

	_, err = f.Read(File{Name: "./gone.insert", Path: "r/gone.insert"})
	assert.Error(t, err)
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "<p>a & b</p>", Unescape("&lt;p&gt;a &amp; b&lt;/p&gt;"))
	assert.Equal(t, "plain", Unescape("plain"))
	assert.Equal(t, "<b>already</b>", Unescape("<b>already</b>"))
}
