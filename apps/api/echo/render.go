package echoapi

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const viewsDir = "templates/views"

// templateRenderer renders the views of viewsDir, each one wrapped in the `_base` layout.
// Views are named after their path without extension, eg: `settings/profile`.
type templateRenderer struct {
	views map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer(fsys fs.FS) (*templateRenderer, error) {
	r := &templateRenderer{views: make(map[string]*template.Template)}
	base := path.Join(viewsDir, "_base.gohtml")

	for _, pattern := range []string{"*.gohtml", "*/*.gohtml"} {
		fps, err := fs.Glob(fsys, path.Join(viewsDir, pattern))
		if err != nil {
			return nil, errors.Wrap(err, "listing views")
		}
		for _, fp := range fps {
			if strings.HasPrefix(path.Base(fp), "_") {
				continue
			}
			tmpl, err := template.ParseFS(fsys, base, fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fp)
			}
			name := strings.TrimSuffix(strings.TrimPrefix(fp, viewsDir+"/"), ".gohtml")
			r.views[name] = tmpl
		}
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.views[name]
	if !ok {
		return errors.Errorf("view %q not found", name)
	}
	return tmpl.Execute(w, data)
}
