package repositories_test

import (
	"context"
	"github.com/myrjola/repquiz/internal/sqlite"
	"github.com/myrjola/repquiz/internal/testhelpers"
	"io"
	"testing"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	var (
		db  *sqlite.Database
		err error
	)

	ctx, cancel := context.WithCancel(context.Background())
	if db, err = sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard)); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		cancel()
		if err = db.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return db
}
