package surfboard

import (
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/pkg/errors"
)

// chartFiles are the metadata file names of a chart directory, in lookup order.
var chartFiles = []string{"Chart.yaml", "chart.yaml"}

// Chart is the subset of Chart.yaml the map shows.
type Chart struct {
	APIVersion  string `yaml:"apiVersion"`
	AppVersion  string `yaml:"appVersion"`
	Description string `yaml:"description"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
}

// Entry is a chart placed in the dependency tree.
type Entry struct {
	Chart
	// Depth is the number of directories between the entry and the top chart.
	Depth int
}

// readChart parses the chart metadata in dir. It returns nil when dir holds
// no chart.
func readChart(fs afero.Fs, dir string) (*Chart, error) {
	for _, name := range chartFiles {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			continue
		}

		var chart Chart
		if err := yaml.Unmarshal(data, &chart); err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
		return &chart, nil
	}
	return nil, nil
}
