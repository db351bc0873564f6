package roster_test

import (
	"bytes"
	"context"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/roster"
	"github.com/myrjola/repquiz/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func ids(legislators []models.Legislator) []string {
	out := make([]string, 0, len(legislators))
	for _, l := range legislators {
		out = append(out, l.ID)
	}
	return out
}

func TestFile_Roster(t *testing.T) {
	provider := roster.File{Path: filepath.Join("testdata", "roster.json"), Logger: testhelpers.NewLogger(io.Discard)}
	legislators, err := provider.Roster(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"P000197", "J000299", "F000483"}, ids(legislators))

	johnson := legislators[1]
	require.Equal(t, models.PartyRepublican, johnson.Party, "party label is normalised")
	require.Equal(t, "Mike Johnson", johnson.Name)

	fedorchak := legislators[2]
	require.Zero(t, fedorchak.District)
	require.Equal(t, "At-Large", fedorchak.DistrictLabel())
	require.Equal(t, "F000483.jpg", fedorchak.ImageFile)
}

func TestFile_Missing(t *testing.T) {
	provider := roster.File{Path: filepath.Join(t.TempDir(), "missing.json"), Logger: nil}
	_, err := provider.Roster(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTP_Roster(t *testing.T) {
	body, err := os.ReadFile(filepath.Join("testdata", "roster.json"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/representatives_metadata.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	provider := roster.HTTP{URL: srv.URL + "/representatives_metadata.json", Client: srv.Client(), Logger: nil}
	legislators, err := provider.Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, legislators, 3)

	provider.URL = srv.URL + "/missing.json"
	_, err = provider.Roster(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
}

func TestSanitize(t *testing.T) {
	legislators := roster.Sanitize([]models.Legislator{
		{ID: " A000001 ", FirstName: "Alice", LastName: "Able", Party: "democrat"},
		{ID: "A000001", Party: models.PartyRepublican},
		{ID: "B000002", Party: "Libertarian"},
		{ID: "", Party: models.PartyDemocrat},
	}, testhelpers.NewLogger(io.Discard))

	require.Equal(t, []models.Legislator{{
		ID:        "A000001",
		Name:      "Alice Able",
		FirstName: "Alice",
		LastName:  "Able",
		Party:     models.PartyDemocrat,
		ImageFile: "A000001.jpg",
	}}, legislators)
}

func TestImportYAML(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "legislators-current.yaml"))
	require.NoError(t, err)
	defer f.Close()

	legislators, err := roster.ImportYAML(f, testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	require.Equal(t, []string{"P000197", "J000299", "Z000017", "F000483"}, ids(legislators))

	pelosi := legislators[0]
	require.Equal(t, "Nancy Pelosi", pelosi.Name)
	require.Equal(t, 11, pelosi.District, "most recent term wins")
	require.Equal(t, "P000197.jpg", pelosi.ImageFile)
	require.Equal(t, "Mike Johnson", legislators[1].Name, "falls back to first and last name")
	require.Equal(t, "Ryan K. Zinke", legislators[2].Name)

	var buf bytes.Buffer
	require.NoError(t, roster.Encode(&buf, legislators))
	decoded, err := roster.Decode(&buf, nil)
	require.NoError(t, err)
	require.Equal(t, legislators, decoded)
}

func TestNew(t *testing.T) {
	repo := roster.File{Path: "unused", Logger: nil}

	provider, err := roster.New(roster.SourceSQLite, repo, nil)
	require.NoError(t, err)
	require.Equal(t, repo, provider)

	_, err = roster.New(roster.SourceSQLite, nil, nil)
	require.Error(t, err)

	provider, err = roster.New("https://example.com/representatives_metadata.json", nil, nil)
	require.NoError(t, err)
	require.IsType(t, roster.HTTP{}, provider)

	provider, err = roster.New("./data/representatives_metadata.json", nil, nil)
	require.NoError(t, err)
	require.Equal(t, roster.File{Path: "./data/representatives_metadata.json", Logger: nil}, provider)

	_, err = roster.New("", nil, nil)
	require.Error(t, err)
}
