package chartmap

import (
	"bytes"
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/surfpub/internal/cmd/application"
)

const releaseNotes = `eue-status-api-1.2.3-abc
- EUE-1234 fix thing
`

func chartFs(t *testing.T, root string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		root + "/Chart.yaml":                     "name: eue\nversion: 2.0.0\ndescription: umbrella chart\n",
		root + "/charts/api/Chart.yaml":          "name: api\nversion: 1.2.4\ndescription: status api\n",
		root + "/charts/api/_release_notes.yaml": releaseNotes,
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

// fetcherFunc adapts a function to application.ChartFetcher.
type fetcherFunc func(ctx context.Context, chart, version, dir string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, chart, version, dir string) (string, error) {
	return f(ctx, chart, version, dir)
}

func run(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestMapFromChartDir(t *testing.T) {
	fs := chartFs(t, "eue")
	app := &application.Mock{
		FsValue:      fs,
		JiraURLValue: "https://jira.example.com",
		ChartFetcherFunc: func(context.Context) (application.ChartFetcher, error) {
			t.Fatal("chart should not be fetched")
			return nil, nil
		},
	}

	stdout, err := run(t, app, "repo/eue", "--chart-dir", "eue", "--notes", "--out", "out")
	require.NoError(t, err)

	path := filepath.Join("out", "eue-map.insert")
	assert.Equal(t, path, strings.TrimSpace(stdout))

	page, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "umbrella chart")
	assert.Contains(t, string(page), "status api")
	assert.Contains(t, string(page), "https://jira.example.com/browse/EUE-1234")
}

func TestMapProjectFlag(t *testing.T) {
	fs := chartFs(t, "eue")
	app := &application.Mock{FsValue: fs}

	_, err := run(t, app, "eue", "--chart-dir", "eue", "--project", "EUE")
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "EUE-map.insert")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMapFetchesChart(t *testing.T) {
	fs := afero.NewMemMapFs()
	var gotChart, gotVersion, workDir string
	app := &application.Mock{
		FsValue: fs,
		ChartFetcherFunc: func(context.Context) (application.ChartFetcher, error) {
			return fetcherFunc(func(_ context.Context, chart, version, dir string) (string, error) {
				gotChart, gotVersion, workDir = chart, version, dir
				chartDir := filepath.Join(dir, "eue")
				err := afero.WriteFile(fs, filepath.Join(chartDir, "Chart.yaml"), []byte("name: eue\nversion: 2.0.0\n"), 0o644)
				return chartDir, err
			}), nil
		},
	}

	_, err := run(t, app, "repo/eue", "2.0.0")
	require.NoError(t, err)

	assert.Equal(t, "repo/eue", gotChart)
	assert.Equal(t, "2.0.0", gotVersion)
	exists, err := afero.DirExists(fs, workDir)
	require.NoError(t, err)
	assert.False(t, exists, "work directory should be removed")

	exists, err = afero.Exists(fs, "eue-map.insert")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMapFetcherUnavailable(t *testing.T) {
	want := stderrors.New("helm not found")
	app := &application.Mock{
		ChartFetcherFunc: func(context.Context) (application.ChartFetcher, error) {
			return nil, want
		},
	}

	_, err := run(t, app, "repo/eue")
	assert.ErrorIs(t, err, want)
}

func TestMapArgs(t *testing.T) {
	_, err := run(t, &application.Mock{})
	require.Error(t, err)
}
