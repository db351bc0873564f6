package sqlite

import (
	"context"
	"fmt"
	"github.com/jmoiron/sqlx"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/random"
	"log/slog"
	"strings"
	"time"

	_ "embed"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed schema.sql
var schemaDefinition string

// migrations are applied in order. The index of the last applied migration plus one is stored in PRAGMA
// user_version. Append new migrations, never edit applied ones.
var migrations = []string{ //nolint:gochecknoglobals // append-only list.
	schemaDefinition,
}

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to database and migrates the schema.
//
// It establishes two database connections, one for read/write operations and one for read-only operations.
// Writes go through a single connection, see https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	return open(ctx, url, logger, migrations)
}

// open connects to url and applies migrations. On failure no connections are left open.
func open(ctx context.Context, url string, logger *slog.Logger, migrations []string) (*Database, error) {
	var (
		err         error
		readWriteDB *sqlx.DB
		readDB      *sqlx.DB
	)

	commonConfig := strings.Join([]string{
		// Write-ahead logging enables higher performance and concurrent readers.
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when database is under load.
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
	}, "&")

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
	readConfig := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s", url, commonConfig)
	readWriteConfig := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s", url, commonConfig)

	// In-memory databases need shared cache so that both pools see the same data, and a unique name so that
	// parallel tests don't share it. mode=ro is not honoured for them, query_only still is.
	// See https://www.sqlite.org/inmemorydb.html.
	if strings.Contains(url, ":memory:") {
		var (
			randomID     string
			dbNameLength uint = 20
		)
		if randomID, err = random.Letters(dbNameLength); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		readConfig = fmt.Sprintf("file:%s?mode=memory&cache=shared&_query_only=true&%s", randomID, commonConfig)
		readWriteConfig = fmt.Sprintf("file:%s?mode=memory&cache=shared&_txlock=immediate&%s", randomID, commonConfig)
	}

	if readWriteDB, err = sqlx.Open("sqlite3", readWriteConfig); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}

	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	// An in-memory database disappears with its last connection.
	readWriteDB.SetConnMaxLifetime(0)
	readWriteDB.SetConnMaxIdleTime(0)

	if readDB, err = sqlx.Open("sqlite3", readConfig); err != nil {
		return nil, errors.Join(errors.Wrap(err, "open read database"), readWriteDB.Close())
	}

	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	db := Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger.With(slog.String("source", "sqlite.Database")),
	}

	if err = db.migrate(ctx, migrations); err != nil {
		return nil, errors.Join(errors.Wrap(err, "migrate schema"), db.Close())
	}

	go db.StartOptimizer(ctx, time.Hour)

	return &db, nil
}

// migrate applies the migrations newer than PRAGMA user_version, each in its own transaction.
func (db *Database) migrate(ctx context.Context, migrations []string) error {
	var (
		version int
		err     error
	)
	if err = db.ReadWrite.GetContext(ctx, &version, "PRAGMA user_version"); err != nil {
		return errors.Wrap(err, "read schema version")
	}
	if version > len(migrations) {
		return errors.New("database schema is newer than the application",
			slog.Int("version", version), slog.Int("known", len(migrations)))
	}

	for i := version; i < len(migrations); i++ {
		var tx *sqlx.Tx
		if tx, err = db.ReadWrite.BeginTxx(ctx, nil); err != nil {
			return errors.Wrap(err, "start transaction")
		}
		if _, err = tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "apply migration", slog.Int("version", i+1))
		}
		// PRAGMA does not accept bound parameters.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "bump schema version", slog.Int("version", i+1))
		}
		if err = tx.Commit(); err != nil {
			return errors.Wrap(err, "commit migration", slog.Int("version", i+1))
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "applied migration", slog.Int("version", i+1))
	}
	return nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}
