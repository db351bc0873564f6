// Package roster provides the sources a quiz samples legislators from.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/quiz"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultPath is where the import command writes the metadata JSON and where it is read from by default.
const DefaultPath = "./data/representatives_metadata.json"

// SourceSQLite selects the legislators table of the application database in [New].
const SourceSQLite = "sqlite"

const httpTimeout = 10 * time.Second

// Repository is the database backed roster, see [repositories.LegislatorRepository].
type Repository interface {
	Roster(ctx context.Context) ([]models.Legislator, error)
}

// File reads the metadata JSON document written by the importer from disk on every call.
type File struct {
	Path   string
	Logger *slog.Logger
}

func (f File) Roster(_ context.Context) ([]models.Legislator, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open roster", slog.String("path", f.Path))
	}
	defer func() {
		_ = file.Close()
	}()
	legislators, err := Decode(file, f.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "decode roster", slog.String("path", f.Path))
	}
	return legislators, nil
}

// HTTP fetches the metadata JSON document from URL.
type HTTP struct {
	URL    string
	Client *http.Client
	Logger *slog.Logger
}

func (h HTTP) Roster(ctx context.Context) ([]models.Legislator, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request", slog.String("url", h.URL))
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout} //nolint:exhaustruct // defaults are fine.
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch roster", slog.String("url", h.URL))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status",
			slog.String("url", h.URL), slog.Int("status", resp.StatusCode))
	}
	legislators, err := Decode(resp.Body, h.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "decode roster", slog.String("url", h.URL))
	}
	return legislators, nil
}

// Decode parses a metadata JSON document and sanitises the result.
func Decode(r io.Reader, logger *slog.Logger) ([]models.Legislator, error) {
	var legislators []models.Legislator
	if err := json.NewDecoder(r).Decode(&legislators); err != nil {
		return nil, errors.Wrap(err, "decode json")
	}
	return Sanitize(legislators, logger), nil
}

// Encode writes legislators as an indented metadata JSON document.
func Encode(w io.Writer, legislators []models.Legislator) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(legislators); err != nil {
		return errors.Wrap(err, "encode json")
	}
	return nil
}

// Sanitize drops records that cannot take part in a quiz: a missing id, an id seen before or a party other than
// Republican or Democrat. Party labels are normalised. Dropped records are logged at debug level.
func Sanitize(legislators []models.Legislator, logger *slog.Logger) []models.Legislator {
	var (
		seen = make(map[string]bool, len(legislators))
		out  = make([]models.Legislator, 0, len(legislators))
	)
	for _, l := range legislators {
		l.ID = strings.TrimSpace(l.ID)
		reason := ""
		party, err := models.ParseParty(string(l.Party))
		switch {
		case l.ID == "":
			reason = "missing id"
		case seen[l.ID]:
			reason = "duplicate id"
		case err != nil:
			reason = "inadmissible party"
		}
		if reason != "" {
			if logger != nil {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "dropping legislator",
					slog.String("reason", reason), slog.String("bioguide_id", l.ID),
					slog.String("party", string(l.Party)))
			}
			continue
		}
		seen[l.ID] = true
		l.Party = party
		if l.Name == "" {
			l.Name = strings.TrimSpace(fmt.Sprintf("%s %s", l.FirstName, l.LastName))
		}
		if l.ImageFile == "" {
			l.ImageFile = l.ID + ".jpg"
		}
		out = append(out, l)
	}
	return out
}

// New picks the provider for source: [SourceSQLite] for the application database, an http(s) URL for a remote
// metadata document or otherwise a file path.
func New(source string, repo Repository, logger *slog.Logger) (quiz.Provider, error) {
	switch {
	case source == SourceSQLite:
		if repo == nil {
			return nil, errors.New("sqlite roster requires a database")
		}
		return repo, nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return HTTP{URL: source, Client: nil, Logger: logger}, nil
	case source == "":
		return nil, errors.New("roster source not configured")
	default:
		return File{Path: source, Logger: logger}, nil
	}
}
