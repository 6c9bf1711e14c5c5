package surfboard

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/surfpub/internal/discovery"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
	"github.com/agentstation/surfpub/pkg/title"
)

const releaseNotes = `eue-status-api-1.2.3-abc
- EUE-1234 fix thing
- EUE-1234 mentioned again
- JENKINS build.12-x
- ITF-5678 other thing
eue-status-api-1.2.4-def
- EUE-1234 follow up
- no ticket here
`

const valuesFile = `status-api-gateway:
  ingress:
    host: status.example.com
    rules:
      - serviceName: eue-status-api
        servicePort: "80"
        path: /alpha
      - serviceName: eue-status-ui
        servicePort: "80"
        path: /ui
`

func chartYAML(name, version, description string) string {
	return fmt.Sprintf("apiVersion: v2\nname: %s\nversion: %s\ndescription: %s\nappVersion: \"1.0\"\n", name, version, description)
}

func chartFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"eue/Chart.yaml":                           chartYAML("eue", "2.0.0", "umbrella chart"),
		"eue/charts/api/Chart.yaml":                chartYAML("api", "1.2.4", "status api"),
		"eue/charts/api/_release_notes.yaml":       releaseNotes,
		"eue/charts/redis/chart.yaml":              chartYAML("redis", "10.5.7", "cache"),
		"eue/charts/empty/README.md":               "not a chart",
		"eue/eue-status-api-alpha-values.yaml":     valuesFile,
		"eue/eue-status-api-beta-values.yaml":      "replicas: 2\n",
		"eue/eue-status-api-gamma-values.yaml.bak": valuesFile,
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

type summaryFunc func(ctx context.Context, key string) (string, error)

func (f summaryFunc) Summary(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}

func TestBuildCharts(t *testing.T) {
	m, err := NewGenerator(chartFS(t), Options{Project: "eue"}).Build(context.Background(), "eue")
	require.NoError(t, err)

	require.Len(t, m.Charts, 3)
	assert.Equal(t, "eue", m.Charts[0].Name)
	assert.Equal(t, 0, m.Charts[0].Depth)
	assert.Equal(t, "api", m.Charts[1].Name)
	assert.Equal(t, 2, m.Charts[1].Depth)
	assert.Equal(t, "status api", m.Charts[1].Description)
	assert.Equal(t, "redis", m.Charts[2].Name)
	assert.Equal(t, "10.5.7", m.Charts[2].Version)

	assert.Empty(t, m.Notes, "release notes are opt-in")
	assert.Empty(t, m.Namespaces, "routes are opt-in")
}

func TestBuildReleaseNotes(t *testing.T) {
	captured := logging.CaptureLoggingForTest(t)

	var looked []string
	summaries := summaryFunc(func(_ context.Context, key string) (string, error) {
		looked = append(looked, key)
		if key == "ITF-5678" {
			return "", errors.New("jira down")
		}
		return "summary of " + key, nil
	})

	m, err := NewGenerator(chartFS(t), Options{
		Project:      "eue",
		ReleaseNotes: true,
		JiraURL:      "https://jira.example.com/",
		Summaries:    summaries,
	}).Build(context.Background(), "eue")
	require.NoError(t, err)

	require.Len(t, m.Notes, 1)
	notes := m.Notes[0]
	assert.Equal(t, "api", notes.Service)
	require.Len(t, notes.Releases, 2)

	first := notes.Releases[0]
	assert.Equal(t, "eue-status-api-1.2.3-abc", first.Version)
	require.Len(t, first.Tickets, 2)
	assert.Equal(t, Ticket{Key: "EUE-1234", URL: "https://jira.example.com/browse/EUE-1234", Summary: "summary of EUE-1234"}, first.Tickets[0])
	assert.Equal(t, "ITF-5678", first.Tickets[1].Key)
	assert.Empty(t, first.Tickets[1].Summary)

	second := notes.Releases[1]
	require.Len(t, second.Tickets, 1)
	assert.Equal(t, "EUE-1234", second.Tickets[0].Key)

	assert.Equal(t, []string{"EUE-1234", "ITF-5678", "EUE-1234"}, looked)
	captured.AssertContains(t, "ITF-5678")
	captured.AssertContains(t, "jira down")
}

func TestParseReleaseNotesBeforeFirstVersion(t *testing.T) {
	notes, err := parseReleaseNotes(context.Background(),
		strings.NewReader("- ABC-1234 early\nsvc-0.1.0-x\n- ABC-1234 later\n"), "svc", "https://jira", nil)
	require.NoError(t, err)

	require.Len(t, notes.Releases, 2)
	assert.Empty(t, notes.Releases[0].Version)
	assert.Equal(t, "ABC-1234", notes.Releases[0].Tickets[0].Key)
	assert.Equal(t, "svc-0.1.0-x", notes.Releases[1].Version)
	assert.Len(t, notes.Releases[1].Tickets, 1)
}

func TestBuildRoutes(t *testing.T) {
	m, err := NewGenerator(chartFS(t), Options{Project: "eue", Routes: true}).Build(context.Background(), "eue")
	require.NoError(t, err)

	require.Len(t, m.Namespaces, 1, "only names ending in -values.yaml are read")
	ns := m.Namespaces[0]
	assert.Equal(t, "eue-status-api-alpha", ns.Name)
	assert.Equal(t, "alpha", ns.Env)
	assert.Equal(t, []string{"eue status api", "eue status ui"}, ns.Services)
}

func TestNamespaceEnv(t *testing.T) {
	assert.Equal(t, "alpha", namespaceEnv("eue-status-api-alpha"))
	assert.Equal(t, "alpha", namespaceEnv("eue-status-api-alpha-2"))
	assert.Equal(t, "short-name", namespaceEnv("short-name"))
}

func TestBuildMalformedChart(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad/Chart.yaml", []byte("name: [unterminated"), 0o644))

	_, err := NewGenerator(fs, Options{Project: "bad"}).Build(context.Background(), "bad")
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestRender(t *testing.T) {
	m := &Map{
		Project: "eue",
		Charts: []Entry{
			{Chart: Chart{Name: "eue", Version: "2.0.0", Description: "umbrella"}},
			{Chart: Chart{Name: "api", Version: "1.2.4", Description: "<script>x</script>"}, Depth: 2},
		},
		Notes: []ReleaseNotes{{
			Service: "api",
			Releases: []Release{{
				Version: "api-1.2.4-def",
				Tickets: []Ticket{{Key: "EUE-1234", URL: "https://jira/browse/EUE-1234", Summary: "fix"}},
			}},
		}},
		Namespaces: []Namespace{{Name: "eue-status-api-alpha", Env: "alpha", Services: []string{"eue status api"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, m))
	out := buf.String()

	assert.Contains(t, out, "<h1>Surfboard for eue Helm Chart</h1>")
	assert.Contains(t, out, `<tr><td><h2><a href="#eue">eue</a></h2>2.0.0<br/>umbrella</td></tr>`)
	assert.Contains(t, out, `<tr><td></td><td></td><td><h2><a href="#api">api</a></h2>`)
	assert.Contains(t, out, "&amp;lt;script&amp;gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `<a href="https://jira/browse/EUE-1234" target="_blank">EUE-1234</a> fix`)
	assert.Contains(t, out, `<h2>Namespace: <a name="alpha">eue-status-api-alpha</a></h2>`)
	assert.Contains(t, out, "<li>eue status api</li>")
}

func TestRenderSurvivesUnescape(t *testing.T) {
	m := &Map{
		Project: "eue",
		Charts: []Entry{
			{Chart: Chart{Name: "api", Version: "1.0<2", Description: "Tom & Jerry <b>bold</b>"}},
		},
		Notes: []ReleaseNotes{{
			Service: "a&b",
			Releases: []Release{{
				Version: "api-1.0 \"rc\"",
				Tickets: []Ticket{{Key: "EUE-1", URL: "https://jira/browse/EUE-1?a=1&b=2", Summary: "<i>x</i> & y"}},
			}},
		}},
		Namespaces: []Namespace{{Name: "ns", Env: "alpha", Services: []string{"svc <one>"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, m))
	uploaded := discovery.Unescape(buf.String())

	assert.Contains(t, uploaded, "Tom &amp; Jerry &lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, uploaded, "1.0&lt;2")
	assert.Contains(t, uploaded, "&lt;i&gt;x&lt;/i&gt; &amp; y")
	assert.Contains(t, uploaded, "<li>svc &lt;one&gt;</li>")
	assert.Contains(t, uploaded, `href="https://jira/browse/EUE-1?a=1&amp;b=2"`)
	assert.NotContains(t, uploaded, "<b>")

	dec := xml.NewDecoder(strings.NewReader("<page>" + uploaded + "</page>"))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err, "uploaded fragment must be well-formed XHTML:\n%s", uploaded)
	}
}

func TestWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	path, err := Write(fs, "out", &Map{Project: "EUE"})
	require.NoError(t, err)
	assert.Equal(t, "out/EUE-map.insert", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Surfboard for EUE Helm Chart")
	assert.Equal(t, "EUE-map.insert", FileName("EUE"))
	assert.Equal(t, "EUE - Surfboard Report - EUE", title.Derive("EUE", "./"+FileName("EUE")))
}

func TestFetch(t *testing.T) {
	var gotName string
	var gotArgs []string
	f := NewFetcher("/usr/bin/helm", func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	})

	dir, err := f.Fetch(context.Background(), "stable/eue", "2.0.0", "work")
	require.NoError(t, err)
	assert.Equal(t, "work/eue", dir)
	assert.Equal(t, "/usr/bin/helm", gotName)
	assert.Equal(t, []string{"fetch", "--untar", "--untardir", "work", "stable/eue", "--version", "2.0.0"}, gotArgs)

	_, err = f.Fetch(context.Background(), "stable/eue", "", "work")
	require.NoError(t, err)
	assert.NotContains(t, gotArgs, "--version")
}

func TestFetchFailure(t *testing.T) {
	f := NewFetcher("helm", func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Error: chart not found"), errors.New("exit status 1")
	})

	_, err := f.Fetch(context.Background(), "stable/missing", "1.0.0", "work")
	var procErr *errors.ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "Error: chart not found", procErr.Output)
}

func TestChartName(t *testing.T) {
	assert.Equal(t, "eue", ChartName("stable/eue"))
	assert.Equal(t, "eue", ChartName("eue"))
	assert.Equal(t, "eue", ChartName("oci://registry/charts/eue/"))
}

func TestJiraSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, token, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot", user)
		assert.Equal(t, "secret", token)
		assert.Equal(t, "/rest/api/latest/issue/EUE-1234", r.URL.Path)
		assert.Equal(t, "summary", r.URL.Query().Get("fields"))
		_, _ = io.WriteString(w, `{"key":"EUE-1234","fields":{"summary":"Fix the thing"}}`)
	}))
	defer server.Close()

	c := NewJiraClient(server.URL+"/", "bot", "secret", time.Second)
	defer c.Close()

	summary, err := c.Summary(context.Background(), "EUE-1234")
	require.NoError(t, err)
	assert.Equal(t, "Fix the thing", summary)
}

func TestJiraSummaryPersonalAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"key":"EUE-1234","fields":{"summary":"Fix the thing"}}`)
	}))
	defer server.Close()

	c := NewJiraClient(server.URL, "", "pat", time.Second)
	defer c.Close()

	summary, err := c.Summary(context.Background(), "EUE-1234")
	require.NoError(t, err)
	assert.Equal(t, "Fix the thing", summary)
}

func TestJiraSummaryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewJiraClient(server.URL, "bot", "secret", time.Second)
	defer c.Close()

	_, err := c.Summary(context.Background(), "EUE-9999")
	assert.True(t, errors.IsNotFound(err))
}
