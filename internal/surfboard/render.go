package surfboard

import (
	"bytes"
	"html"
	"html/template"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/surfpub/pkg/constants"
	"github.com/agentstation/surfpub/pkg/errors"
	"github.com/agentstation/surfpub/pkg/title"
)

// The publisher unescapes a fragment once before upload, so every text
// value passes through "text" and is escaped twice. What reaches the
// storage format is then escaped exactly once.
var pageTemplate = template.Must(template.New("surfboard").Funcs(template.FuncMap{
	"pad": func(n int) template.HTML {
		return template.HTML(strings.Repeat("<td></td>", n)) //nolint:gosec // constant markup
	},
	"text": html.EscapeString,
}).Parse(`<h1>Surfboard for {{text .Project}} Helm Chart</h1>
<table>
{{- range .Charts}}
<tr>{{pad .Depth}}<td><h2><a href="#{{text .Name}}">{{text .Name}}</a></h2>{{text .Version}}<br/>{{text .Description}}</td></tr>
{{- end}}
</table>
{{- range .Notes}}
<h2>Release Notes for <a name="{{text .Service}}">{{text .Service}}</a></h2>
{{- range .Releases}}
{{- if .Version}}
<p>{{text .Version}}</p>
{{- end}}
<ul>
{{- range .Tickets}}
<li><a href="{{text .URL}}" target="_blank">{{text .Key}}</a>{{if .Summary}} {{text .Summary}}{{end}}</li>
{{- end}}
</ul>
{{- end}}
{{- end}}
{{- range .Namespaces}}
<h2>Namespace: <a name="{{text .Env}}">{{text .Name}}</a></h2>
<ul>
{{- range .Services}}
<li>{{text .}}</li>
{{- end}}
</ul>
{{- end}}
`))

// Render writes the map as an HTML fragment.
func Render(w io.Writer, m *Map) error {
	if err := pageTemplate.Execute(w, m); err != nil {
		return errors.NewParseError("html", "", "render Surfboard map", err)
	}
	return nil
}

// FileName returns the fragment name the map of project is written to.
func FileName(project string) string {
	return project + title.Sentinel
}

// Write renders m into dir and returns the written path.
func Write(fs afero.Fs, dir string, m *Map) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, m); err != nil {
		return "", err
	}

	if err := fs.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	path := filepath.Join(dir, FileName(m.Project))
	if err := afero.WriteFile(fs, path, buf.Bytes(), constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	return path, nil
}
