package quiz

import (
	"context"
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/random"
	"log/slog"
	"math"
	"slices"
)

var (
	ErrEmptyRoster  = errors.NewSentinel("roster is empty")
	ErrDataLoad     = errors.NewSentinel("roster could not be loaded")
	ErrInvalidGuess = errors.NewSentinel("guess is not an admissible party")
	ErrNotPlaying   = errors.NewSentinel("game is not in progress")
	ErrNotRevealed  = errors.NewSentinel("round is not revealed")
)

// Provider supplies the full roster a game samples from.
type Provider interface {
	Roster(ctx context.Context) ([]models.Legislator, error)
}

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseLoadFailed Phase = "load_failed"
	PhasePlaying    Phase = "playing"
	PhaseGameOver   Phase = "game_over"
)

// Mode decides whether a guess advances to the next legislator immediately or only after an explicit
// [Controller.AdvanceToNext]. Unknown modes behave like [ModeImmediate].
type Mode string

const (
	ModeImmediate Mode = "immediate"
	ModeReveal    Mode = "reveal"
)

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeImmediate, ModeReveal:
		return Mode(s), nil
	default:
		return "", errors.New("unknown mode", slog.String("mode", s))
	}
}

// Result is the outcome of [Controller.SubmitGuess].
type Result struct {
	// Accepted is false when the guess was ignored because the round was already revealed.
	Accepted   bool
	Correct    bool
	Legislator models.Legislator
}

// Controller owns the state of one quiz session.
//
// Legislators are drawn uniformly at random without replacement until the roster is exhausted. A Controller is
// owned by a single caller and is not safe for concurrent use; see [Store] for shared access.
type Controller struct {
	mode Mode
	rng  random.Source

	phase   Phase
	loadErr error
	initial []models.Legislator
	roster  []models.Legislator
	current *models.Legislator
	// currentIdx is the position of current in roster.
	currentIdx int

	revealed    bool
	lastCorrect bool
	lastGuess   models.Party

	correct    int
	total      int
	streak     int
	bestStreak int
	rounds     int
}

// Option configures a [Controller].
type Option func(*Controller)

// WithRandom replaces the default unseeded random source.
func WithRandom(src random.Source) Option {
	return func(c *Controller) {
		c.rng = src
	}
}

// New returns a controller in [PhaseLoading] waiting for a roster.
func New(mode Mode, opts ...Option) *Controller {
	c := &Controller{ //nolint:exhaustruct // zero values are the initial state.
		mode:  mode,
		rng:   random.Global,
		phase: PhaseLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the roster from provider and initialises the game with it.
//
// A failed fetch moves the game to [PhaseLoadFailed] and returns an error wrapping [ErrDataLoad].
func (c *Controller) Load(ctx context.Context, provider Provider) error {
	legislators, err := provider.Roster(ctx)
	if err != nil {
		err = errors.Wrap(fmt.Errorf("%w: %w", ErrDataLoad, err), "fetch roster")
		c.Fail(err)
		return err
	}
	return c.Initialize(legislators)
}

// Fail records that the roster could not be obtained.
func (c *Controller) Fail(err error) {
	c.phase = PhaseLoadFailed
	c.loadErr = err
}

// Initialize starts the game with a copy of roster and draws the first legislator.
func (c *Controller) Initialize(roster []models.Legislator) error {
	if len(roster) == 0 {
		err := errors.Wrap(ErrEmptyRoster, "initialize")
		c.Fail(err)
		return err
	}
	c.initial = slices.Clone(roster)
	c.roster = slices.Clone(roster)
	c.correct, c.total, c.streak, c.bestStreak, c.rounds = 0, 0, 0, 0, 0
	c.loadErr = nil
	c.phase = PhasePlaying
	c.draw()
	return nil
}

// draw picks the next legislator or ends the game when the roster is exhausted.
func (c *Controller) draw() {
	c.revealed = false
	c.lastCorrect = false
	c.lastGuess = ""
	if len(c.roster) == 0 {
		c.current = nil
		c.phase = PhaseGameOver
		return
	}
	c.currentIdx = c.rng.IntN(len(c.roster))
	next := c.roster[c.currentIdx]
	c.current = &next
}

// SubmitGuess scores guess against the current legislator.
//
// In [ModeReveal] a guess on an already revealed round is ignored and reported with Result.Accepted set to false.
func (c *Controller) SubmitGuess(guess models.Party) (Result, error) {
	if !guess.Valid() {
		return Result{}, errors.Wrap(ErrInvalidGuess, "submit guess", slog.String("guess", string(guess)))
	}
	if c.phase != PhasePlaying || c.current == nil {
		return Result{}, errors.Wrap(ErrNotPlaying, "submit guess", slog.String("phase", string(c.phase)))
	}
	legislator := *c.current
	if c.revealed {
		return Result{Accepted: false, Correct: c.lastCorrect, Legislator: legislator}, nil
	}

	correct := guess == legislator.Party
	if correct {
		c.correct++
		c.streak++
		c.bestStreak = max(c.bestStreak, c.streak)
	} else {
		c.streak = 0
	}
	c.total++

	if c.mode == ModeReveal {
		c.revealed = true
		c.lastCorrect = correct
		c.lastGuess = guess
	} else {
		c.completeRound()
	}
	return Result{Accepted: true, Correct: correct, Legislator: legislator}, nil
}

// AdvanceToNext finishes a revealed round and draws the next legislator.
func (c *Controller) AdvanceToNext() error {
	if c.phase != PhasePlaying {
		return errors.Wrap(ErrNotPlaying, "advance", slog.String("phase", string(c.phase)))
	}
	if !c.revealed {
		return errors.Wrap(ErrNotRevealed, "advance")
	}
	c.completeRound()
	return nil
}

// completeRound removes the current legislator from the roster and moves on.
func (c *Controller) completeRound() {
	c.roster = slices.Delete(slices.Clone(c.roster), c.currentIdx, c.currentIdx+1)
	c.rounds++
	c.draw()
}

// AccuracyPercentage is the share of correct guesses in percent rounded half away from zero to one decimal.
// It is 0 before the first guess.
func (c *Controller) AccuracyPercentage() float64 {
	return accuracy(c.correct, c.total)
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	const percent = 100
	return math.Round(float64(correct)/float64(total)*percent*10) / 10 //nolint:mnd // one decimal.
}

// FormatAccuracy renders an accuracy the way it is shown to players: "0" before any guesses, otherwise with
// one decimal.
func FormatAccuracy(correct, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", accuracy(correct, total))
}

// ScoreLine renders the score as "correct / total (accuracy%)", e.g. "1 / 2 (50.0%)".
func ScoreLine(correct, total int) string {
	return fmt.Sprintf("%d / %d (%s%%)", correct, total, FormatAccuracy(correct, total))
}

// Reset discards all state and returns the game to [PhaseLoading].
func (c *Controller) Reset() {
	*c = Controller{ //nolint:exhaustruct // zero values are the initial state.
		mode:  c.mode,
		rng:   c.rng,
		phase: PhaseLoading,
	}
}

// Restart starts over with the full roster the game was initialised with.
func (c *Controller) Restart() error {
	initial := c.initial
	c.Reset()
	if err := c.Initialize(initial); err != nil {
		return errors.Wrap(err, "restart")
	}
	return nil
}

// Phase returns the current lifecycle stage.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Mode returns the advance mode of the game.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Snapshot is the read model handed to presentation layers.
type Snapshot struct {
	Phase            Phase              `json:"phase"`
	Mode             Mode               `json:"mode"`
	Current          *models.Legislator `json:"current,omitempty"`
	Revealed         bool               `json:"revealed"`
	LastGuessCorrect bool               `json:"last_guess_correct"`
	LastGuess        models.Party       `json:"last_guess,omitempty"`
	Correct          int                `json:"correct"`
	Total            int                `json:"total"`
	Streak           int                `json:"streak"`
	BestStreak       int                `json:"best_streak"`
	Remaining        int                `json:"remaining"`
	InitialSize      int                `json:"initial_size"`
	RoundsCompleted  int                `json:"rounds_completed"`
	Accuracy         float64            `json:"accuracy"`
	AccuracyLabel    string             `json:"accuracy_label"`
	ScoreLine        string             `json:"score_line"`
	LoadError        string             `json:"load_error,omitempty"`
}

// Snapshot returns a copy of the state that is safe to keep after the controller changes.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{ //nolint:exhaustruct // optional fields set below.
		Phase:            c.phase,
		Mode:             c.mode,
		Revealed:         c.revealed,
		LastGuessCorrect: c.lastCorrect,
		LastGuess:        c.lastGuess,
		Correct:          c.correct,
		Total:            c.total,
		Streak:           c.streak,
		BestStreak:       c.bestStreak,
		Remaining:        len(c.roster),
		InitialSize:      len(c.initial),
		RoundsCompleted:  c.rounds,
		Accuracy:         c.AccuracyPercentage(),
		AccuracyLabel:    FormatAccuracy(c.correct, c.total),
		ScoreLine:        ScoreLine(c.correct, c.total),
	}
	if c.current != nil {
		current := *c.current
		s.Current = &current
	}
	if c.loadErr != nil {
		s.LoadError = c.loadErr.Error()
	}
	return s
}
