// Package chartmap provides the command that renders the Surfboard map of a
// Helm chart as a report fragment.
package chartmap

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/surfpub/internal/cmd/application"
	"github.com/agentstation/surfpub/internal/surfboard"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
)

// Flags holds the map command flags.
type Flags struct {
	Project  string
	Notes    bool
	Routes   bool
	Out      string
	ChartDir string
	Keep     bool
}

// NewCommand creates the map command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "map CHART [VERSION]",
		Short: "Render the Surfboard map of a Helm chart",
		Long: `Map fetches a Helm chart with helm, walks its dependency tree and writes
the Surfboard page as PROJECT-map.insert, ready to be published.

Release notes and gateway routes found in the chart can be added to the
page. Ticket summaries are fetched from Jira when JIRA_TOKEN is set, with
basic auth when JIRA_USER is set too.`,
		Example: `  surfpub map repo/eue 2.0.0                 # Fetch and map a chart version
  surfpub map repo/eue --notes --routes       # Include release notes and routes
  surfpub map eue --chart-dir ./eue           # Map an unpacked chart`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := ""
			if len(args) == 2 {
				version = args[1]
			}
			return Execute(cmd.Context(), app, cmd.OutOrStdout(), args[0], version, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Project, "project", "", "project name of the page (default: the chart name)")
	cmd.Flags().BoolVar(&flags.Notes, "notes", false, "add release notes found in the chart")
	cmd.Flags().BoolVar(&flags.Routes, "routes", false, "add gateway routes found in values files")
	cmd.Flags().StringVar(&flags.Out, "out", ".", "directory the fragment is written to")
	cmd.Flags().StringVar(&flags.ChartDir, "chart-dir", "", "use an unpacked chart instead of fetching one")
	cmd.Flags().BoolVar(&flags.Keep, "keep", false, "keep the fetched chart")

	return cmd
}

// Execute builds and writes the map of chart.
func Execute(ctx context.Context, app application.Application, stdout io.Writer, chart, version string, flags *Flags) error {
	logger := app.Logger()
	fs := app.Fs()

	project := flags.Project
	if project == "" {
		project = surfboard.ChartName(chart)
	}

	chartDir := flags.ChartDir
	if chartDir == "" {
		fetcher, err := app.ChartFetcher(ctx)
		if err != nil {
			return err
		}

		workDir, err := afero.TempDir(fs, "", "surfpub-chart-")
		if err != nil {
			return errors.WrapIO("create", "chart work directory", err)
		}
		if flags.Keep {
			logger.Info().Str("path", workDir).Msg("Keeping fetched chart")
		} else {
			defer func() {
				if err := fs.RemoveAll(workDir); err != nil {
					logger.Warn().Err(err).Str("path", workDir).Msg("Failed to remove chart work directory")
				}
			}()
		}

		chartDir, err = fetcher.Fetch(ctx, chart, version, workDir)
		if err != nil {
			return err
		}
	}

	gen := surfboard.NewGenerator(fs, surfboard.Options{
		Project:      project,
		ReleaseNotes: flags.Notes,
		Routes:       flags.Routes,
		JiraURL:      app.JiraURL(),
		Summaries:    app.IssueTracker(),
	})

	m, err := gen.Build(logging.WithLogger(ctx, logger), chartDir)
	if err != nil {
		return err
	}

	path, err := surfboard.Write(fs, flags.Out, m)
	if err != nil {
		return err
	}

	logger.Info().Str("path", path).Int("charts", len(m.Charts)).Msg("Wrote chart map")
	_, err = fmt.Fprintln(stdout, path)
	return err
}
