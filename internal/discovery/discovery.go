// Package discovery finds the report fragments to publish and reads them.
package discovery

import (
	"context"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/pkg/constants"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/logging"
)

// File is a discovered report fragment.
type File struct {
	// Name is the path relative to the walk root, prefixed with "./".
	// Titles are derived from it.
	Name string
	// Path locates the file on the filesystem.
	Path string
}

// Finder walks a directory tree for report fragments.
type Finder struct {
	fs     afero.Fs
	root   string
	suffix string
}

// NewFinder returns a Finder over fs. Empty root and suffix select the defaults.
func NewFinder(fs afero.Fs, root, suffix string) *Finder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if root == "" {
		root = constants.DefaultRoot
	}
	if suffix == "" {
		suffix = constants.DefaultSuffix
	}
	return &Finder{fs: fs, root: root, suffix: suffix}
}

// Root returns the directory the finder walks.
func (f *Finder) Root() string {
	return f.root
}

// Find returns every regular file under the root whose name ends with the
// suffix, sorted lexicographically by Name.
func (f *Finder) Find(ctx context.Context) ([]File, error) {
	logger := logging.FromContext(ctx)

	var files []File
	err := afero.Walk(f.fs, f.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || !strings.HasSuffix(path, f.suffix) {
			return nil
		}

		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		files = append(files, File{
			Name: "./" + filepath.ToSlash(rel),
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("walk", f.root, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	logger.Debug().
		Str("root", f.root).
		Str("suffix", f.suffix).
		Int("count", len(files)).
		Msg("Discovered report fragments")
	return files, nil
}

// Read returns the unescaped content of file.
func (f *Finder) Read(file File) (string, error) {
	data, err := afero.ReadFile(f.fs, file.Path)
	if err != nil {
		return "", errors.WrapIO("read", file.Path, err)
	}
	return Unescape(string(data)), nil
}

// Unescape decodes HTML entities in a fragment before it is uploaded.
func Unescape(content string) string {
	return html.UnescapeString(content)
}
