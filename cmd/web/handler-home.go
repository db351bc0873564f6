package main

import (
	"github.com/myrjola/repquiz/internal/contexthelpers"
	"net/http"
)

type homeTemplateData struct {
	BaseTemplateData
}

// home shows the running game or the mode picker when the browser session has none.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	if id, ok := contexthelpers.GameID(r.Context()); ok {
		app.renderGame(w, r, http.StatusOK, id)
		return
	}

	data := homeTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
	}

	app.render(w, r, http.StatusOK, "home", data)
}
