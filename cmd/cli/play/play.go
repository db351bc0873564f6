// Package play is a terminal rendition of the quiz.
package play

import (
	"bufio"
	"context"
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/logging"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/quiz"
	"github.com/myrjola/repquiz/internal/random"
	"github.com/myrjola/repquiz/internal/roster"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Group = &cobra.Group{
	ID:    "play",
	Title: "Playing",
}

func init() {
	Cmd.Flags().String("roster", roster.DefaultPath, "metadata JSON file or http(s) URL")
	Cmd.Flags().String("mode", string(quiz.ModeReveal), "advance mode, reveal or immediate")
	Cmd.Flags().Uint64("seed", 0, "random seed for a reproducible draw order, 0 draws unseeded")
}

var Cmd = &cobra.Command{
	Use:     "play",
	GroupID: "play",
	Short:   "Play the quiz in the terminal",
	Long:    "Shows one representative at a time and asks for their party. Answer R or D, q quits.",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		var (
			rosterSource, _ = cmd.Flags().GetString("roster")
			modeFlag, _     = cmd.Flags().GetString("mode")
			seed, _         = cmd.Flags().GetUint64("seed")
			logger          = slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				AddSource:   false,
				Level:       slog.LevelWarn,
				ReplaceAttr: nil,
			})))
		)
		mode, err := quiz.ParseMode(modeFlag)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Invalid mode: %v\n", err)
			os.Exit(1)
		}
		provider, err := roster.New(rosterSource, nil, logger)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Invalid roster: %v\n", err)
			os.Exit(1)
		}
		src := random.Global
		if seed != 0 {
			src = random.NewSeeded(seed)
		}
		controller := quiz.New(mode, quiz.WithRandom(src))
		if err = Run(cmd.Context(), os.Stdin, os.Stdout, controller, provider); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Quiz error: %v\n", err)
			os.Exit(1)
		}
	},
}

var errQuit = errors.NewSentinel("quit")

// Run loads the roster and plays games on controller, reading answers from in, until the player quits or in is
// exhausted.
func Run(ctx context.Context, in io.Reader, out io.Writer, controller *quiz.Controller, provider quiz.Provider) error {
	if err := controller.Load(ctx, provider); err != nil {
		return errors.Wrap(err, "load roster")
	}
	p := &player{scanner: bufio.NewScanner(in), out: out, controller: controller}
	for {
		err := p.playGame()
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		again, err := p.ask("Play again? [y/N] ")
		if err != nil || !strings.EqualFold(again, "y") {
			return nil //nolint:nilerr // end of input ends the session.
		}
		if err = controller.Restart(); err != nil {
			return errors.Wrap(err, "restart")
		}
	}
}

type player struct {
	scanner    *bufio.Scanner
	out        io.Writer
	controller *quiz.Controller
}

func (p *player) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// ask prints prompt and returns the next trimmed line.
func (p *player) ask(prompt string) (string, error) {
	p.printf("%s", prompt)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", errors.Wrap(err, "read answer")
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *player) playGame() error {
	for p.controller.Phase() == quiz.PhasePlaying {
		s := p.controller.Snapshot()
		l := s.Current
		p.printf("\n[%d/%d] %s, %s %s\n", s.RoundsCompleted+1, s.InitialSize, l.Name, l.State, l.DistrictLabel())

		guess, err := p.guess()
		if err != nil {
			return err
		}
		result, err := p.controller.SubmitGuess(guess)
		if err != nil {
			return errors.Wrap(err, "submit guess")
		}

		if p.controller.Mode() == quiz.ModeReveal {
			if result.Correct {
				p.printf("Correct!\n")
			} else {
				p.printf("Wrong, %s is a %s.\n", result.Legislator.Name, result.Legislator.Party)
			}
		}
		s = p.controller.Snapshot()
		p.printf("Score %s, streak %d, best %d, %d left\n", s.ScoreLine, s.Streak, s.BestStreak, s.Remaining)

		if p.controller.Mode() == quiz.ModeReveal {
			if _, err = p.ask("Press enter for the next representative "); err != nil {
				return err
			}
			if err = p.controller.AdvanceToNext(); err != nil {
				return errors.Wrap(err, "advance")
			}
		}
	}

	s := p.controller.Snapshot()
	p.printf("\nGame over! Final score %s, best streak %d\n", s.ScoreLine, s.BestStreak)
	return nil
}

// guess asks until the player gives an admissible answer.
func (p *player) guess() (models.Party, error) {
	for {
		answer, err := p.ask("Party? [R]epublican / [D]emocrat, q quits: ")
		if err != nil {
			return "", err
		}
		switch strings.ToLower(answer) {
		case "q", "quit":
			return "", errQuit
		case "r":
			return models.PartyRepublican, nil
		case "d":
			return models.PartyDemocrat, nil
		}
		party, err := models.ParseParty(answer)
		if err == nil {
			return party, nil
		}
		p.printf("Please answer R or D.\n")
	}
}
