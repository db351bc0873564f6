package portraits_test

import (
	"context"
	"github.com/myrjola/repquiz/internal/models"
	"github.com/myrjola/repquiz/internal/portraits"
	"github.com/myrjola/repquiz/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDownloader_Download(t *testing.T) {
	var (
		mu         sync.Mutex
		requested  []string
		userAgents []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		userAgents = append(userAgents, r.UserAgent())
		mu.Unlock()
		switch r.URL.Path {
		case "/primary/P000197.jpg":
			_, _ = w.Write([]byte("pelosi"))
		case "/fallback/J/J000299.jpg":
			_, _ = w.Write([]byte("johnson"))
		case "/primary/Z000017.jpg":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "F000483.jpg"), []byte("existing"), 0o600))

	downloader := portraits.NewDownloader(dir, testhelpers.NewLogger(io.Discard))
	downloader.Client = server.Client()
	downloader.PrimaryURL = server.URL + "/primary"
	downloader.FallbackURL = server.URL + "/fallback"

	summary, err := downloader.Download(context.Background(), []models.Legislator{
		{ID: "P000197", ImageFile: "P000197.jpg"},
		{ID: "J000299"},
		{ID: "F000483", ImageFile: "F000483.jpg"},
		{ID: "Z000017", ImageFile: "Z000017.jpg"},
	})
	require.NoError(t, err)
	require.Equal(t, portraits.Summary{Downloaded: 2, Skipped: 1, Failed: 1}, summary)
	require.Equal(t, "downloaded 2, skipped 1, failed 1", summary.String())

	got, err := os.ReadFile(filepath.Join(dir, "P000197.jpg"))
	require.NoError(t, err)
	require.Equal(t, "pelosi", string(got))
	got, err = os.ReadFile(filepath.Join(dir, "J000299.jpg"))
	require.NoError(t, err)
	require.Equal(t, "johnson", string(got))
	got, err = os.ReadFile(filepath.Join(dir, "F000483.jpg"))
	require.NoError(t, err)
	require.Equal(t, "existing", string(got), "existing portraits are kept")
	require.NoFileExists(t, filepath.Join(dir, "Z000017.jpg"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3, "no temporary files are left behind")

	mu.Lock()
	defer mu.Unlock()
	require.NotContains(t, requested, "/primary/F000483.jpg")
	require.Contains(t, requested, "/fallback/Z/Z000017.jpg")
	for _, ua := range userAgents {
		require.Contains(t, ua, "repquiz")
	}
}

func TestDownloader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	downloader := portraits.NewDownloader(t.TempDir(), testhelpers.NewLogger(io.Discard))
	_, err := downloader.Download(ctx, []models.Legislator{{ID: "P000197"}})
	require.ErrorIs(t, err, context.Canceled)
}
