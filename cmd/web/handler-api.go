package main

import (
	"github.com/myrjola/repquiz/internal/contexthelpers"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/quiz"
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}

// healthy reports that the server is up together with the number of games held in memory.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Games: app.games.Len()})
}

// apiGame responds with the state of the game of the browser session as JSON.
func (app *application) apiGame(w http.ResponseWriter, r *http.Request) {
	id, ok := contexthelpers.GameID(r.Context())
	if !ok {
		app.writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "no game in progress"})
		return
	}
	snapshot, err := app.games.Snapshot(id)
	if errors.Is(err, quiz.ErrGameNotFound) {
		app.writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "no game in progress"})
		return
	}
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "snapshot game"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}
