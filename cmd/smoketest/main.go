package main

import (
	"context"
	"fmt"
	"github.com/myrjola/repquiz/internal/e2etest"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/logging"
	"github.com/myrjola/repquiz/internal/quiz"
	"log/slog"
	"os"
	"time"
)

// smokeRounds keeps the smoke test short on the full House roster.
const smokeRounds = 3

// PlayGame plays a few correct rounds in reveal mode, checks the score and restarts.
func PlayGame(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds
	defer cancel()

	game, err := client.StartGame(ctx, quiz.ModeReveal)
	if err != nil {
		return errors.Wrap(err, "start game")
	}
	if game.Phase != quiz.PhasePlaying {
		return errors.New("game did not start", slog.String("phase", string(game.Phase)),
			slog.String("load_error", game.LoadError))
	}

	rounds := min(smokeRounds, game.InitialSize)
	for range rounds {
		if game.Current == nil {
			return errors.New("no legislator to guess")
		}
		if _, err = client.Guess(ctx, string(game.Current.Party)); err != nil {
			return errors.Wrap(err, "guess")
		}
		if _, err = client.Next(ctx); err != nil {
			return errors.Wrap(err, "next")
		}
		if game, err = client.Snapshot(ctx); err != nil {
			return errors.Wrap(err, "snapshot")
		}
	}

	want := quiz.ScoreLine(rounds, rounds)
	if game.ScoreLine != want || game.BestStreak != rounds {
		return errors.New("unexpected score", slog.String("score_line", game.ScoreLine),
			slog.String("want", want), slog.Int("best_streak", game.BestStreak))
	}

	if game, err = client.Restart(ctx); err != nil {
		return errors.Wrap(err, "restart")
	}
	if game.Total != 0 || game.Remaining != game.InitialSize {
		return errors.New("restart did not reset the game", slog.Int("total", game.Total),
			slog.Int("remaining", game.Remaining))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = fmt.Sprintf("https://%s", hostname)
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = PlayGame(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error playing game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
