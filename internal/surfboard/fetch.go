package surfboard

import (
	"context"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/agentstation/surfpub/pkg/constants"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
)

// Runner runs a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Fetcher downloads and unpacks charts with helm.
type Fetcher struct {
	helm string
	run  Runner
}

// NewFetcher creates a Fetcher invoking the helm binary at helmPath.
func NewFetcher(helmPath string, run Runner) *Fetcher {
	if run == nil {
		run = ExecRunner
	}
	return &Fetcher{helm: helmPath, run: run}
}

// ChartName returns the name of a chart reference such as "repo/name".
func ChartName(chart string) string {
	return path.Base(strings.TrimSuffix(chart, "/"))
}

// Fetch unpacks chart into dir and returns the chart's directory.
// An empty version fetches the latest one.
func (f *Fetcher) Fetch(ctx context.Context, chart, version, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ChartFetchTimeout)
	defer cancel()

	args := []string{"fetch", "--untar", "--untardir", dir, chart}
	if version != "" {
		args = append(args, "--version", version)
	}

	logging.FromContext(ctx).Info().
		Str("chart", chart).
		Str("version", version).
		Msg("Fetching chart")

	out, err := f.run(ctx, f.helm, args...)
	if err != nil {
		return "", errors.NewProcessError("fetch", f.helm+" "+strings.Join(args, " "), string(out), err)
	}
	return filepath.Join(dir, ChartName(chart)), nil
}
