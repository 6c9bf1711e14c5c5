// Package surfboard builds the Surfboard map of a Helm chart: its dependency
// tree, optionally its release notes and gateway routes, rendered as an HTML
// fragment ready to be published.
package surfboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/pkg/constants"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
)

// Options configures what a Generator collects.
type Options struct {
	Project string
	// ReleaseNotes collects _release_notes.yaml files.
	ReleaseNotes bool
	// Routes collects gateway routes from *-values.yaml files.
	Routes bool
	// JiraURL is the base of ticket links.
	JiraURL string
	// Summaries, when set, adds ticket summaries to release notes.
	Summaries SummaryFetcher
}

// Map is everything shown on a Surfboard page.
type Map struct {
	Project    string
	Charts     []Entry
	Notes      []ReleaseNotes
	Namespaces []Namespace
}

// Generator walks an unpacked chart.
type Generator struct {
	fs   afero.Fs
	opts Options
}

// NewGenerator creates a Generator reading from fs.
func NewGenerator(fs afero.Fs, opts Options) *Generator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.JiraURL == "" {
		opts.JiraURL = constants.DefaultJiraURL
	}
	return &Generator{fs: fs, opts: opts}
}

// Build walks chartDir and collects the map.
func (g *Generator) Build(ctx context.Context, chartDir string) (*Map, error) {
	logger := logging.FromContext(ctx)
	m := &Map{Project: g.opts.Project}

	err := afero.Walk(g.fs, chartDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case info.IsDir():
			chart, err := readChart(g.fs, path)
			if err != nil {
				return err
			}
			if chart != nil {
				m.Charts = append(m.Charts, Entry{Chart: *chart, Depth: depth(chartDir, path)})
			}

		case g.opts.Routes && strings.HasSuffix(info.Name(), valuesSuffix):
			logger.Debug().Str("file", path).Msg("Reading gateway routes")
			ns, err := readRoutes(g.fs, path)
			if err != nil {
				return err
			}
			if ns != nil {
				m.Namespaces = append(m.Namespaces, *ns)
			}

		case g.opts.ReleaseNotes && info.Name() == ReleaseNotesFile:
			logger.Debug().Str("file", path).Msg("Reading release notes")
			notes, err := g.readNotes(ctx, path)
			if err != nil {
				return err
			}
			m.Notes = append(m.Notes, *notes)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("walk", chartDir, err)
	}

	logger.Info().
		Str("project", m.Project).
		Int("charts", len(m.Charts)).
		Int("release_notes", len(m.Notes)).
		Int("namespaces", len(m.Namespaces)).
		Msg("Built Surfboard map")
	return m, nil
}

func (g *Generator) readNotes(ctx context.Context, path string) (*ReleaseNotes, error) {
	f, err := g.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	service := filepath.Base(filepath.Dir(path))
	return parseReleaseNotes(ctx, f, service, g.opts.JiraURL, g.opts.Summaries)
}

// depth counts the directories between root and path.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
