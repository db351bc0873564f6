package main

import (
	"github.com/google/uuid"
	"github.com/myrjola/repquiz/internal/contexthelpers"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/quiz"
	"log/slog"
	"net/http"
)

// renderGame renders the game panel for htmx requests and the full game page otherwise.
func (app *application) renderGame(w http.ResponseWriter, r *http.Request, status int, id uuid.UUID) {
	snapshot, err := app.games.Snapshot(id)
	if err != nil {
		app.gameError(w, r, errors.Wrap(err, "snapshot game"))
		return
	}
	data := gameTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Game:             snapshot,
		Parties:          models.Parties(),
	}
	if app.isHTMX(w, r) {
		app.renderFragment(w, r, status, "game", "game-panel", data)
		return
	}
	app.render(w, r, status, "game", data)
}

// currentGame returns the game of the browser session. Without one the player is sent back to the start page.
func (app *application) currentGame(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := contexthelpers.GameID(r.Context())
	if ok {
		return id, true
	}
	app.redirectHome(w, r)
	return uuid.Nil, false
}

func (app *application) redirectHome(w http.ResponseWriter, r *http.Request) {
	if app.isHTMX(w, r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// gameError answers err from the game store. A game pruned after loadGame saw it is handled like a session
// without a game.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, quiz.ErrGameNotFound) {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "game is gone", errors.SlogError(err))
		app.sessionManager.Remove(r.Context(), gameIDSessionKey)
		app.redirectHome(w, r)
		return
	}
	app.serverError(w, r, err)
}

// afterPost answers a game form: htmx swaps in the new panel, a plain form post is redirected to the start page.
func (app *application) afterPost(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if app.isHTMX(w, r) {
		app.renderGame(w, r, http.StatusOK, id)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) game(w http.ResponseWriter, r *http.Request) {
	id, ok := app.currentGame(w, r)
	if !ok {
		return
	}
	app.renderGame(w, r, http.StatusOK, id)
}

func (app *application) newGame(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	mode, err := quiz.ParseMode(r.PostForm.Get("mode"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id := app.games.Start(ctx, mode)
	app.sessionManager.Put(ctx, gameIDSessionKey, id.String())
	app.logger.LogAttrs(ctx, slog.LevelInfo, "started game",
		slog.String("game_id", id.String()), slog.String("mode", string(mode)))

	app.afterPost(w, r, id)
}

func (app *application) guess(w http.ResponseWriter, r *http.Request) {
	id, ok := app.currentGame(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	party, err := models.ParseParty(r.PostForm.Get("party"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	err = app.games.Do(id, func(c *quiz.Controller) error {
		result, guessErr := c.SubmitGuess(party)
		if guessErr != nil {
			return guessErr
		}
		app.logger.LogAttrs(ctx, slog.LevelDebug, "scored guess",
			slog.Bool("accepted", result.Accepted),
			slog.Bool("correct", result.Correct),
			slog.String("bioguide_id", result.Legislator.ID))
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, quiz.ErrNotPlaying):
		// A stale page, the panel below shows the actual state.
		app.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring guess", errors.SlogError(err))
	default:
		app.gameError(w, r, errors.Wrap(err, "submit guess"))
		return
	}

	app.afterPost(w, r, id)
}

func (app *application) next(w http.ResponseWriter, r *http.Request) {
	id, ok := app.currentGame(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	err := app.games.Do(id, func(c *quiz.Controller) error {
		return c.AdvanceToNext()
	})
	switch {
	case err == nil:
	case errors.Is(err, quiz.ErrNotPlaying), errors.Is(err, quiz.ErrNotRevealed):
		app.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring advance", errors.SlogError(err))
	default:
		app.gameError(w, r, errors.Wrap(err, "advance"))
		return
	}

	app.afterPost(w, r, id)
}

// restart starts the game over with a freshly loaded roster. It is also the retry after a failed load.
func (app *application) restart(w http.ResponseWriter, r *http.Request) {
	id, ok := app.currentGame(w, r)
	if !ok {
		return
	}
	if err := app.games.Restart(r.Context(), id); err != nil {
		app.gameError(w, r, errors.Wrap(err, "restart game"))
		return
	}

	app.afterPost(w, r, id)
}
