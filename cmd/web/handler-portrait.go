package main

import (
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/ui"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const placeholderPortrait = "static/placeholder.svg"

var portraitExtensions = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table.
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// portrait serves a portrait from the portrait directory. Missing portraits and invalid names get the placeholder
// silhouette so that the game never shows a broken image.
func (app *application) portrait(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	if !fs.ValidPath(file) || strings.ContainsAny(file, `/\`) ||
		!portraitExtensions[strings.ToLower(path.Ext(file))] {
		app.placeholder(w, r)
		return
	}
	info, err := fs.Stat(app.portraits, file)
	if err != nil || info.IsDir() {
		app.placeholder(w, r)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFileFS(w, r, app.portraits, file)
}

// placeholder writes the silhouette regardless of the request path.
func (app *application) placeholder(w http.ResponseWriter, r *http.Request) {
	svg, err := fs.ReadFile(ui.Files, placeholderPortrait)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "read placeholder portrait"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(svg)
}
