package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/repquiz/internal/envstruct"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/logging"
	"github.com/myrjola/repquiz/internal/pprofserver"
	"github.com/myrjola/repquiz/internal/quiz"
	"github.com/myrjola/repquiz/internal/random"
	"github.com/myrjola/repquiz/internal/repositories"
	"github.com/myrjola/repquiz/internal/roster"
	"github.com/myrjola/repquiz/internal/sqlite"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	games          *quiz.Store
	templates      map[string]*template.Template
	minifier       *minify.M
	htmx           *htmx.HTMX
	portraits      fs.FS
	defaultMode    quiz.Mode
}

type config struct {
	// Addr is the address the HTTP server listens on. Port 0 picks a free port.
	Addr string `env:"QUIZ_ADDR" envDefault:"localhost:4000"`
	// PprofAddr enables the pprof server on the given loopback address when set.
	PprofAddr string `env:"QUIZ_PPROF_ADDR" envDefault:""`
	// SqliteURL is the path to the SQLite database or ":memory:".
	SqliteURL string `env:"QUIZ_SQLITE_URL" envDefault:"./repquiz.sqlite"`
	// Roster is "sqlite", an http(s) URL or a path to the metadata JSON written by the import command.
	Roster      string `env:"QUIZ_ROSTER" envDefault:"./data/representatives_metadata.json"`
	PortraitDir string `env:"QUIZ_PORTRAIT_DIR" envDefault:"./data/representative_portraits"`
	// Mode is preselected in the mode picker.
	Mode string `env:"QUIZ_MODE" envDefault:"reveal"`
	// RandomSeed makes the draw order reproducible. 0 draws unseeded.
	RandomSeed      int           `env:"QUIZ_RANDOM_SEED" envDefault:"0"`
	GameIdleTimeout time.Duration `env:"QUIZ_GAME_IDLE_TIMEOUT" envDefault:"2h"`
	SessionLifetime time.Duration `env:"QUIZ_SESSION_LIFETIME" envDefault:"12h"`
}

const janitorInterval = time.Minute

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	var mode quiz.Mode
	if mode, err = quiz.ParseMode(cfg.Mode); err != nil {
		return errors.Wrap(err, "parse mode")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db", slog.String("url", cfg.SqliteURL))

	legislators := repositories.NewLegislatorRepository(db, logger)
	var provider quiz.Provider
	if provider, err = roster.New(cfg.Roster, legislators, logger); err != nil {
		return errors.Wrap(err, "roster provider", slog.String("roster", cfg.Roster))
	}
	games := quiz.NewStore(newController(cfg.RandomSeed), provider, logger)
	go games.StartJanitor(ctx, janitorInterval, cfg.GameIdleTimeout)

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, time.Hour)
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	var templates map[string]*template.Template
	if templates, err = parseTemplates(); err != nil {
		return errors.Wrap(err, "parse templates")
	}

	minifier := minify.New()
	minifier.Add("text/html", &html.Minifier{ //nolint:exhaustruct // the rest default to off.
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		games:          games,
		templates:      templates,
		minifier:       minifier,
		htmx:           htmx.New(),
		portraits:      os.DirFS(cfg.PortraitDir),
		defaultMode:    mode,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	games.Wait()
	return nil
}

// newController creates the controllers of new games. A non-zero seed gives every game the same draw order.
func newController(seed int) func(quiz.Mode) *quiz.Controller {
	return func(mode quiz.Mode) *quiz.Controller {
		if seed == 0 {
			return quiz.New(mode)
		}
		return quiz.New(mode, quiz.WithRandom(random.NewSeeded(uint64(seed))))
	}
}

func main() {
	ctx := context.Background()
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
