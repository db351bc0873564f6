package main

import (
	"github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/repquiz/ui"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", cacheForeverHeaders(http.FileServerFS(ui.Files)))
	mux.HandleFunc("GET /portraits/{file}", app.portrait)
	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, middleware.MiddleWare, app.loadGame)
	dynamic := alice.New(app.sessionManager.LoadAndSave, middleware.MiddleWare, noSurf(app), commonContext, app.loadGame)

	mux.Handle("GET /{$}", dynamic.ThenFunc(app.home))
	mux.Handle("GET /game", dynamic.ThenFunc(app.game))
	mux.Handle("POST /game/new", dynamic.ThenFunc(app.newGame))
	mux.Handle("POST /game/guess", dynamic.ThenFunc(app.guess))
	mux.Handle("POST /game/next", dynamic.ThenFunc(app.next))
	mux.Handle("POST /game/restart", dynamic.ThenFunc(app.restart))
	mux.Handle("GET /api/game", session.ThenFunc(app.apiGame))

	standard := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	return standard.Then(mux)
}
