package roster_test

import (
	"context"
	"github.com/myrjola/repquiz/cmd/cli/roster"
	"github.com/myrjola/repquiz/internal/portraits"
	"github.com/myrjola/repquiz/internal/repositories"
	internalroster "github.com/myrjola/repquiz/internal/roster"
	"github.com/myrjola/repquiz/internal/sqlite"
	"github.com/myrjola/repquiz/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"path/filepath"
	"testing"
)

func TestImportRoster(t *testing.T) {
	var (
		ctx       = context.Background()
		logger    = testhelpers.NewLogger(io.Discard)
		dir       = t.TempDir()
		out       = filepath.Join(dir, "representatives_metadata.json")
		sqliteURL = filepath.Join(dir, "repquiz.sqlite")
	)

	n, err := roster.ImportRoster(ctx, filepath.Join("testdata", "legislators-current.yaml"), out, sqliteURL, logger)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	legislators, err := internalroster.File{Path: out, Logger: logger}.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, legislators, 2)

	db, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	stored, err := repositories.NewLegislatorRepository(db, logger).Roster(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, legislators, stored)
}

func TestImportRoster_MissingFile(t *testing.T) {
	_, err := roster.ImportRoster(context.Background(), filepath.Join("testdata", "missing.yaml"),
		filepath.Join(t.TempDir(), "out.json"), "", testhelpers.NewLogger(io.Discard))
	require.Error(t, err)
}

func TestFlagDefaults(t *testing.T) {
	require.Equal(t, portraits.DefaultDir, roster.Portraits.Flags().Lookup("dir").DefValue)
	require.Equal(t, internalroster.DefaultPath, roster.Portraits.Flags().Lookup("roster").DefValue)
	require.Equal(t, internalroster.DefaultPath, roster.Import.Flags().Lookup("out").DefValue)
}
