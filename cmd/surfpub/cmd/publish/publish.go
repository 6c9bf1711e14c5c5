// Package publish provides the command that publishes report fragments
// as Confluence pages.
package publish

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/agentstation/surfpub/internal/cmd/alerts"
	"github.com/agentstation/surfpub/internal/cmd/application"
	"github.com/agentstation/surfpub/internal/cmd/output"
	"github.com/agentstation/surfpub/internal/publish"
	"github.com/agentstation/surfpub/pkg/constants"
	"github.com/agentstation/surfpub/pkg/errors"
)

// Flags holds the publish command flags.
type Flags struct {
	Root        string
	Suffix      string
	DryRun      bool
	KeepGoing   bool
	SummaryFile string
}

// NewCommand creates the publish command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "publish SPACE_KEY ANCHOR_PAGE_ID PROJECT",
		Short: "Publish report fragments as Confluence pages",
		Long: `Publish walks the report root for fragments ending with the report suffix
and publishes each one as a Confluence page titled
"PROJECT - Surfboard Report - NAME".

Pages that already exist in the space are updated in place. Missing pages
are created as children of the anchor page. A failed lookup always stops
the run; a failed create or update stops it unless --keep-going is set.`,
		Example: `  surfpub publish EUE 123456 EUE                 # Publish ./**/*.insert
  surfpub publish EUE 123456 EUE --dry-run       # Show what would change
  surfpub publish EUE 123456 EUE --root reports  # Publish from ./reports
  surfpub publish EUE 123456 EUE -o json         # Machine-readable report`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := publish.Options{
				SpaceKey:  args[0],
				AnchorID:  args[1],
				Project:   args[2],
				DryRun:    flags.DryRun,
				KeepGoing: flags.KeepGoing,
			}
			return Execute(cmd.Context(), app, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Root, "root", "", "directory searched for report fragments (default \""+constants.DefaultRoot+"\")")
	cmd.Flags().StringVar(&flags.Suffix, "suffix", "", "file suffix of report fragments (default \""+constants.DefaultSuffix+"\")")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "decide create or update without changing any page")
	cmd.Flags().BoolVar(&flags.KeepGoing, "keep-going", false, "continue after a failed create or update")
	cmd.Flags().StringVar(&flags.SummaryFile, "summary-file", "", "also write a Markdown summary to this file")

	return cmd
}

// Execute runs a publish and reports its outcome.
func Execute(ctx context.Context, app application.Application, stdout, stderr io.Writer, opts publish.Options, flags *Flags) error {
	logger := app.Logger()

	// Credentials are checked here, before any request is made.
	service, err := app.ContentService(opts.SpaceKey)
	if err != nil {
		return err
	}

	publisher, err := publish.New(service, app.Source(flags.Root, flags.Suffix), opts)
	if err != nil {
		return err
	}

	result, runErr := publisher.Run(ctx)
	if result == nil {
		return runErr
	}

	format := output.Format(app.OutputFormat())
	if err := writeReport(stdout, format, result); err != nil {
		logger.Warn().Err(err).Msg("Failed to write publish report")
	}
	if err := alerts.NewFormatWriter(stderr, format).WriteAlert(summaryAlert(result)); err != nil {
		logger.Warn().Err(err).Msg("Failed to write publish summary")
	}

	if flags.SummaryFile != "" {
		if err := writeSummary(app.Fs(), flags.SummaryFile, result); err != nil {
			logger.Warn().Err(err).Str("path", flags.SummaryFile).Msg("Failed to write summary file")
		}
	}

	return runErr
}

// writeReport prints the per-file outcomes.
func writeReport(w io.Writer, format output.Format, result *publish.Result) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.NewFormatter(format).Format(w, result)
	default:
		return output.NewFormatter(format).Format(w, outcomeTable(result))
	}
}

func outcomeTable(result *publish.Result) output.Data {
	data := output.Data{
		Headers: []string{"File", "Title", "Action", "Status", "Page ID", "Revision", "Error"},
		ColumnAlignment: []output.Align{
			output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignLeft,
			output.AlignRight, output.AlignRight, output.AlignLeft,
		},
	}
	for _, o := range result.Outcomes {
		revision := ""
		if o.Revision > 0 {
			revision = strconv.Itoa(o.Revision)
		}
		data.Rows = append(data.Rows, []string{
			o.File, o.Title, o.Action.String(), string(o.Status), o.PageID, revision, o.Error,
		})
	}
	return data
}

// summaryAlert reports the run with one detail line per failed file.
func summaryAlert(result *publish.Result) *alerts.Alert {
	var alert *alerts.Alert
	switch line := summaryLine(result); {
	case len(result.Failed()) > 0 || result.Aborted:
		alert = alerts.NewError(line)
	case result.DryRun:
		alert = alerts.NewInfo(line)
	default:
		alert = alerts.NewSuccess(line)
	}

	for _, o := range result.Failed() {
		alert.WithDetails(o.File + ": " + o.Error)
	}
	return alert
}

func summaryLine(result *publish.Result) string {
	line := fmt.Sprintf("%d created, %d updated, %d failed",
		result.Count(publish.StatusCreated),
		result.Count(publish.StatusUpdated),
		result.Count(publish.StatusFailed))
	if result.DryRun {
		line = fmt.Sprintf("dry run: %d planned, %d failed",
			result.Count(publish.StatusPlanned),
			result.Count(publish.StatusFailed))
	}
	if result.Aborted {
		line += " (aborted)"
	}
	return fmt.Sprintf("%s in %s", line, result.Duration.Round(time.Millisecond))
}

// writeSummary writes a Markdown summary of the run to path.
func writeSummary(fs afero.Fs, path string, result *publish.Result) error {
	f, err := fs.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = f.Close() }()

	formatter := &output.MarkdownFormatter{
		Title: fmt.Sprintf("Surfboard reports for %s", result.Project),
		Notes: []string{
			"Space: " + result.Space,
			"Anchor page: " + result.Anchor,
			"Run: " + result.RunID,
			summaryLine(result),
		},
	}
	if err := formatter.Format(f, outcomeTable(result)); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
