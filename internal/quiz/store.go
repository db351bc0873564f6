package quiz

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/logging"
	"github.com/myrjola/repquiz/internal/models"
	"log/slog"
	"sync"
	"time"
)

var ErrGameNotFound = errors.NewSentinel("game not found")

const defaultLoadTimeout = 10 * time.Second

// game guards a controller. generation identifies the latest roster load so that a stale load finishing after a
// restart is discarded.
type game struct {
	mu         sync.Mutex
	controller *Controller
	generation int
	lastUsed   time.Time
}

// Store keeps the in-memory games of all browser sessions and serialises access to each of them.
type Store struct {
	mu            sync.Mutex
	games         map[uuid.UUID]*game
	newController func(Mode) *Controller
	provider      Provider
	logger        *slog.Logger
	loads         sync.WaitGroup
	now           func() time.Time

	// LoadTimeout bounds a single roster fetch.
	LoadTimeout time.Duration
}

// NewStore creates a store whose games are created with newController and load their roster from provider.
func NewStore(newController func(Mode) *Controller, provider Provider, logger *slog.Logger) *Store {
	return &Store{ //nolint:exhaustruct // zero values are fine for the sync primitives.
		games:         map[uuid.UUID]*game{},
		newController: newController,
		provider:      provider,
		logger:        logger.With(slog.String("source", "quiz.Store")),
		now:           time.Now,
		LoadTimeout:   defaultLoadTimeout,
	}
}

// Start creates a new game in mode and loads its roster in the background. The game is in [PhaseLoading] until the
// load finishes.
func (s *Store) Start(ctx context.Context, mode Mode) uuid.UUID {
	id := uuid.New()
	g := &game{ //nolint:exhaustruct // generation starts at zero.
		controller: s.newController(mode),
		lastUsed:   s.now(),
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	s.mu.Lock()
	s.games[id] = g
	s.mu.Unlock()

	s.load(ctx, id, g)
	return id
}

// Restart replaces game id with a fresh game in the same mode and reloads the roster from the provider.
// It also serves as the retry after a failed load.
func (s *Store) Restart(ctx context.Context, id uuid.UUID) error {
	g, err := s.get(id)
	if err != nil {
		return errors.Wrap(err, "restart")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastUsed = s.now()
	g.controller = s.newController(g.controller.Mode())
	s.load(ctx, id, g)
	return nil
}

// Do runs fn with exclusive access to the controller of game id.
func (s *Store) Do(id uuid.UUID, fn func(c *Controller) error) error {
	g, err := s.get(id)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastUsed = s.now()
	return fn(g.controller)
}

// Snapshot returns the current state of game id.
func (s *Store) Snapshot(id uuid.UUID) (Snapshot, error) {
	var snapshot Snapshot
	err := s.Do(id, func(c *Controller) error {
		snapshot = c.Snapshot()
		return nil
	})
	return snapshot, err
}

// Exists reports whether game id is known.
func (s *Store) Exists(id uuid.UUID) bool {
	_, err := s.get(id)
	return err == nil
}

// Len is the number of games held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Store) get(id uuid.UUID) (*game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, errors.Wrap(ErrGameNotFound, "get game", slog.String("game_id", id.String()))
	}
	return g, nil
}

// load fetches the roster on a new goroutine. The caller must hold g.mu.
func (s *Store) load(ctx context.Context, id uuid.UUID, g *game) {
	g.generation++
	generation := g.generation
	// The fetch outlives the request that started the game.
	ctx = logging.WithAttrs(context.WithoutCancel(ctx), slog.String("game_id", id.String()))

	s.loads.Add(1)
	go func() {
		defer s.loads.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.LoadTimeout)
		defer cancel()
		start := s.now()
		legislators, err := s.provider.Roster(fetchCtx)

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.generation != generation {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale roster load")
			return
		}
		if err = g.controller.Load(ctx, fetched{legislators: legislators, err: err}); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to load roster", errors.SlogError(err))
			return
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "loaded roster",
			slog.Int("size", len(legislators)), slog.Duration("duration", s.now().Sub(start)))
	}()
}

// Wait blocks until all roster loads in flight have finished.
func (s *Store) Wait() {
	s.loads.Wait()
}

// Prune removes games that have not been used for maxIdle and returns how many were removed.
func (s *Store) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, g := range s.games {
		g.mu.Lock()
		idle := g.lastUsed.Before(cutoff)
		g.mu.Unlock()
		if idle {
			delete(s.games, id)
			removed++
		}
	}
	return removed
}

// StartJanitor prunes idle games every interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			if removed := s.Prune(maxIdle); removed > 0 {
				s.logger.LogAttrs(ctx, slog.LevelInfo, "pruned idle games", slog.Int("removed", removed))
			}
		}
	}
}

// fetched hands an already fetched roster to [Controller.Load].
type fetched struct {
	legislators []models.Legislator
	err         error
}

func (f fetched) Roster(_ context.Context) ([]models.Legislator, error) {
	return f.legislators, f.err
}
