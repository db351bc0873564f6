package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/repquiz/internal/contexthelpers"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/quiz"
	"github.com/myrjola/repquiz/internal/ssr"
	"github.com/myrjola/repquiz/ui"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
)

type BaseTemplateData struct {
	CurrentPath string
	DefaultMode quiz.Mode
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(r.Context()),
		DefaultMode: app.defaultMode,
	}
}

type gameTemplateData struct {
	BaseTemplateData
	Game    quiz.Snapshot
	Parties []models.Party
}

// parseTemplates parses every page under ui/templates/pages together with the base layout and the partials.
//
// Each page directory has to include templates named "title" and "page".
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(ui.Files, "templates/pages/*")
	if err != nil {
		return nil, errors.Wrap(err, "glob pages")
	}

	cache := make(map[string]*template.Template, len(pages))
	for _, dir := range pages {
		name := path.Base(dir)
		// The functions are replaced per request in render.
		t, parseErr := template.New(name).Funcs(template.FuncMap{
			"nonce": func() template.HTMLAttr {
				panic("not implemented")
			},
			"csrf": func() template.HTML {
				panic("not implemented")
			},
		}).ParseFS(ui.Files, "templates/base.gohtml", "templates/partials/*.gohtml", dir+"/*.gohtml")
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "parse page", slog.String("page", name))
		}
		cache[name] = t
	}
	return cache, nil
}

// render writes the full page.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	app.renderTemplate(w, r, status, page, "base", false, data)
}

// renderFragment writes only the named template of page, used for htmx swaps.
func (app *application) renderFragment(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	name string,
	data any,
) {
	app.renderTemplate(w, r, status, page, name, true, data)
}

func (app *application) renderTemplate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	name string,
	fragment bool,
	data any,
) {
	cached, ok := app.templates[page]
	if !ok {
		app.serverError(w, r, errors.New("template not found", slog.String("template", page)))
		return
	}
	// Clone so that concurrent requests don't share the per-request functions.
	t, err := cached.Clone()
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "clone template", slog.String("template", page)))
		return
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // we trust the csrf since it's not provided by user.
		},
	})

	var executed, expanded, minified bytes.Buffer
	if err = t.ExecuteTemplate(&executed, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template",
			slog.String("template", page), slog.String("name", name)))
		return
	}
	if err = ssr.Expand(&expanded, &executed, fragment); err != nil {
		app.serverError(w, r, errors.Wrap(err, "expand custom elements", slog.String("template", page)))
		return
	}
	if err = app.minifier.Minify("text/html", &minified, &expanded); err != nil {
		app.serverError(w, r, errors.Wrap(err, "minify", slog.String("template", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = minified.WriteTo(w)
}
