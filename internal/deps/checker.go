// Package deps checks that the external tools surfpub shells out to are installed.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/surfpub/pkg/errors"
)

// Dependency describes an external command.
type Dependency struct {
	Name          string
	DisplayName   string
	CheckCommands []string
	MinVersion    string
	InstallURL    string
}

// Status is the result of checking a Dependency.
type Status struct {
	Available  bool
	Path       string
	Version    string
	CheckError error
}

// Helm is the chart tool used to fetch charts for the Surfboard map.
var Helm = Dependency{
	Name:          "helm",
	DisplayName:   "Helm",
	CheckCommands: []string{"helm"},
	MinVersion:    "3.0.0",
	InstallURL:    "https://helm.sh/docs/intro/install/",
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Check verifies if a dependency is available on the system.
// It tries all CheckCommands in order and returns the first one that succeeds.
func Check(ctx context.Context, dep Dependency) Status {
	var status Status

	for _, cmd := range dep.CheckCommands {
		path, err := lookPath(cmd)
		if err != nil {
			continue
		}

		status.Available = true
		status.Path = path

		if dep.MinVersion != "" {
			version, err := getVersion(ctx, path)
			if err != nil {
				status.CheckError = fmt.Errorf("found %s but could not detect version: %w", cmd, err)
			} else {
				status.Version = version
				if !meetsMinVersion(version, dep.MinVersion) {
					status.CheckError = fmt.Errorf("found %s version %s but requires %s or later", cmd, version, dep.MinVersion)
				}
			}
		}
		return status
	}

	if len(dep.CheckCommands) > 0 {
		status.CheckError = fmt.Errorf("%s not found in PATH (tried: %s)", dep.DisplayName, strings.Join(dep.CheckCommands, ", "))
	}
	return status
}

// Require returns the path of the dependency's command, or a
// *errors.DependencyError when it is missing. A version that cannot be
// detected is tolerated; one below MinVersion is not.
func Require(ctx context.Context, dep Dependency) (string, error) {
	status := Check(ctx, dep)
	if !status.Available {
		msg := status.CheckError.Error()
		if dep.InstallURL != "" {
			msg += "; install it from " + dep.InstallURL
		}
		return "", &errors.DependencyError{Dependency: dep.Name, Message: msg}
	}
	if status.Version != "" && status.CheckError != nil {
		return "", &errors.DependencyError{Dependency: dep.Name, Message: status.CheckError.Error()}
	}
	return status.Path, nil
}

// getVersion attempts to get the version of a command.
// Different tools report their version differently, so several forms are tried.
func getVersion(ctx context.Context, cmdName string) (string, error) {
	for _, args := range [][]string{{"version", "--short"}, {"--version"}, {"version"}} {
		//nolint:gosec // cmdName is a resolved path of a known dependency
		cmd := exec.CommandContext(ctx, cmdName, args...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			continue
		}

		if version := extractVersion(string(output)); version != "" {
			return version, nil
		}
	}

	return "", fmt.Errorf("could not determine version")
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+\.\d+)`)

// extractVersion extracts the first semantic version number from output.
// Looks for patterns like "1.2.3", "v1.2.3", "version 1.2.3", etc.
func extractVersion(output string) string {
	if matches := versionPattern.FindStringSubmatch(output); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// meetsMinVersion compares dotted versions numerically.
func meetsMinVersion(detected, required string) bool {
	detectedParts := strings.Split(strings.TrimPrefix(detected, "v"), ".")
	requiredParts := strings.Split(strings.TrimPrefix(required, "v"), ".")

	for i := 0; i < len(requiredParts); i++ {
		var d int
		if i < len(detectedParts) {
			d, _ = strconv.Atoi(detectedParts[i])
		}
		r, _ := strconv.Atoi(requiredParts[i])
		if d != r {
			return d > r
		}
	}
	return true
}
