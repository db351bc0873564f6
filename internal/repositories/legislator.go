package repositories

import (
	"context"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/sqlite"
	"log/slog"
)

type LegislatorRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewLegislatorRepository(db *sqlite.Database, logger *slog.Logger) *LegislatorRepository {
	return &LegislatorRepository{
		db:     db,
		logger: logger.With(slog.String("source", "LegislatorRepository")),
	}
}

// Roster returns every stored legislator ordered by state and district.
func (r *LegislatorRepository) Roster(ctx context.Context) ([]models.Legislator, error) {
	var legislators []models.Legislator
	stmt := `SELECT bioguide_id, name, first_name, last_name, party, state, district, image_file
FROM legislators
ORDER BY state, district, bioguide_id`
	if err := r.db.ReadOnly.SelectContext(ctx, &legislators, stmt); err != nil {
		return nil, errors.Wrap(err, "select legislators")
	}
	return legislators, nil
}

// ReplaceAll swaps the stored roster for legislators in a single transaction.
func (r *LegislatorRepository) ReplaceAll(ctx context.Context, legislators []models.Legislator) error {
	var (
		tx  *sqlx.Tx
		err error
	)
	if tx, err = r.db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM legislators"); err != nil {
		return errors.Wrap(err, "delete legislators")
	}
	stmt := `INSERT INTO legislators (bioguide_id, name, first_name, last_name, party, state, district, image_file)
VALUES (:bioguide_id, :name, :first_name, :last_name, :party, :state, :district, :image_file)`
	for _, l := range legislators {
		if _, err = tx.NamedExecContext(ctx, stmt, l); err != nil {
			return errors.Wrap(err, "insert legislator", slog.String("bioguide_id", l.ID))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "replaced roster", slog.Int("size", len(legislators)))
	return nil
}

// Count returns the number of stored legislators.
func (r *LegislatorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.ReadOnly.GetContext(ctx, &count, "SELECT COUNT(*) FROM legislators"); err != nil {
		return 0, errors.Wrap(err, "count legislators")
	}
	return count, nil
}
