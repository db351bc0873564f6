package main

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/repquiz/internal/e2etest"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/quiz"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func otherParty(p models.Party) models.Party {
	if p == models.PartyRepublican {
		return models.PartyDemocrat
	}
	return models.PartyRepublican
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func Test_application_home(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, nil).Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	form := doc.Find("form[action='/game/new']")
	require.Equal(t, 1, form.Length())
	require.Equal(t, "reveal", form.Find("input[name=mode][checked]").AttrOr("value", ""))
	require.Equal(t, 1, form.Find("button.button-primary").Length())

	resp, err := client.Get(ctx, "/api/game")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_application_revealGame(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, nil).Client()

	game, err := client.StartGame(ctx, quiz.ModeReveal)
	require.NoError(t, err)
	require.Equal(t, quiz.PhasePlaying, game.Phase)
	require.Equal(t, 2, game.InitialSize)
	require.NotNil(t, game.Current)

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, game.Current.Name, text(doc, ".portrait .name"))
	require.Equal(t, "/portraits/"+game.Current.ImageFile, doc.Find(".portrait img").AttrOr("src", ""))
	require.Equal(t, 2, doc.Find("form[action='/game/guess'] button[name=party]").Length())

	// Correct guess on the first legislator.
	first := *game.Current
	doc, err = client.Guess(ctx, string(first.Party))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".feedback.correct").Length())
	require.Equal(t, "1 / 1 (100.0%)", text(doc, ".score .score-line"))
	require.Equal(t, string(first.Party), doc.Find("button.selected").AttrOr("value", ""))

	// Guessing again while revealed changes nothing.
	revealed, err := client.Snapshot(ctx)
	require.NoError(t, err)
	csrfToken, err := e2etest.CSRFToken(doc, "/game/next")
	require.NoError(t, err)
	resp, err := client.Post(ctx, "/game/guess", url.Values{
		"csrf_token": {csrfToken},
		"party":      {string(otherParty(first.Party))},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	afterNoop, err := client.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, revealed, afterNoop)

	// Wrong guess on the second legislator.
	_, err = client.Next(ctx)
	require.NoError(t, err)
	game, err = client.Snapshot(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, game.Current.ID)
	require.False(t, game.Revealed)

	doc, err = client.Guess(ctx, string(otherParty(game.Current.Party)))
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".feedback.incorrect").Length())
	require.Equal(t, "0", text(doc, ".score .streak"))
	require.Equal(t, "1", text(doc, ".score .best-streak"))

	doc, err = client.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".game-over").Length())
	require.Equal(t, "1 / 2 (50.0%)", text(doc, ".final-score .score-line"))
	require.Contains(t, text(doc, ".game-over .best-streak"), "1")

	game, err = client.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseGameOver, game.Phase)
	require.Nil(t, game.Current)

	// Restart resets everything.
	game, err = client.Restart(ctx)
	require.NoError(t, err)
	require.Equal(t, quiz.PhasePlaying, game.Phase)
	require.Zero(t, game.Correct)
	require.Zero(t, game.Total)
	require.Zero(t, game.BestStreak)
	require.Equal(t, 2, game.Remaining)
}

func Test_application_immediateGameWithHTMX(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, nil).Client()

	game, err := client.StartGame(ctx, quiz.ModeImmediate)
	require.NoError(t, err)
	require.Equal(t, quiz.ModeImmediate, game.Mode)
	first := *game.Current

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	csrfToken, err := e2etest.CSRFToken(doc, "/game/guess")
	require.NoError(t, err)

	resp, err := client.Post(ctx, "/game/guess", url.Values{
		"csrf_token": {csrfToken},
		"party":      {string(first.Party)},
	}, http.Header{"Hx-Request": {"true"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fragment, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	require.Zero(t, fragment.Find("title").Length(), "htmx gets only the panel")
	require.Equal(t, 1, fragment.Find("section#game").Length())
	require.Zero(t, fragment.Find(".feedback").Length(), "immediate mode does not reveal")
	require.Equal(t, "1 / 1 (100.0%)", text(fragment, ".score .score-line"))
	require.NotEqual(t, first.Name, text(fragment, ".portrait .name"))

	game, err = client.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, game.Remaining)
	require.Equal(t, 1, game.RoundsCompleted)

	// The loading poll swaps in the panel the same way.
	fragment, err = client.GetFragment(ctx, "/game")
	require.NoError(t, err)
	require.Zero(t, fragment.Find("title").Length())
	require.Equal(t, 1, fragment.Find("section#game").Length())
	require.Equal(t, game.Current.Name, text(fragment, ".portrait .name"))

	doc, err = client.GetDoc(ctx, "/game")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find("title").Length(), "plain requests get the whole page")
}

func Test_application_invalidGuess(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, nil).Client()

	_, err := client.StartGame(ctx, quiz.ModeReveal)
	require.NoError(t, err)
	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	csrfToken, err := e2etest.CSRFToken(doc, "/game/guess")
	require.NoError(t, err)

	resp, err := client.Post(ctx, "/game/guess", url.Values{"csrf_token": {csrfToken}, "party": {"Whig"}}, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	game, err := client.Snapshot(ctx)
	require.NoError(t, err)
	require.Zero(t, game.Total)
	require.False(t, game.Revealed)
}

func Test_application_csrf(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, nil).Client()

	resp, err := client.Post(ctx, "/game/new", url.Values{"mode": {"reveal"}}, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_application_loadFailed(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, map[string]string{"QUIZ_ROSTER": "testdata/missing.json"}).Client()

	game, err := client.StartGame(ctx, quiz.ModeReveal)
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseLoadFailed, game.Phase)
	require.NotEmpty(t, game.LoadError)

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, 1, doc.Find(".load-failed").Length())
	require.Equal(t, 1, doc.Find("form[action='/game/restart']").Length())

	// Retrying re-fetches and fails again.
	game, err = client.Restart(ctx)
	require.NoError(t, err)
	require.Equal(t, quiz.PhaseLoadFailed, game.Phase)
}

func Test_application_secureHeaders(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, nil).Client()

	resp, err := client.Get(ctx, "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	nonce, ok := doc.Find("script[nonce]").Attr("nonce")
	require.True(t, ok)
	require.NotEmpty(t, nonce)
	require.Contains(t, resp.Header.Get("Content-Security-Policy"), "'nonce-"+nonce+"'")
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Equal(t, "deny", resp.Header.Get("X-Frame-Options"))

	resp, err = client.Get(ctx, "/static/main.css")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Cache-Control"), "immutable")

	resp, err = client.Get(ctx, "/api/healthy")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok","games":0}`, string(body))
}
