// Package version provides the version command.
package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/surfpub/internal/cmd/application"
)

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for surfpub CLI.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Print(cmd.OutOrStdout(), app)
		},
	}
}

// Print writes the build information of app to w.
func Print(w io.Writer, app application.Application) error {
	_, err := fmt.Fprintf(w, "surfpub version %s\ncommit: %s\nbuilt: %s\nbuilt by: %s\ngo version: %s\nplatform: %s/%s\n",
		app.Version(), app.Commit(), app.Date(), app.BuiltBy(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
