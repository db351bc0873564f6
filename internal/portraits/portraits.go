// Package portraits downloads official portraits of House members into a local directory.
package portraits

import (
	"context"
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/models"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// PrimaryURL serves the congress-legislators project images by Bioguide id.
	PrimaryURL = "https://unitedstates.github.io/images/congress/original"
	// FallbackURL is the Bioguide photo archive, bucketed by the first letter of the id.
	FallbackURL = "https://bioguide.congress.gov/bioguide/photo"

	// DefaultDir is where the web server looks for portraits unless QUIZ_PORTRAIT_DIR says otherwise.
	DefaultDir = "./data/representative_portraits"

	userAgent = "repquiz-portraits/1.0 (+https://github.com/myrjola/repquiz)"
)

var errNotFound = errors.NewSentinel("portrait not found")

// Downloader fetches portraits that are not yet present in Dir.
type Downloader struct {
	Dir         string
	Client      *http.Client
	Logger      *slog.Logger
	PrimaryURL  string
	FallbackURL string
}

// NewDownloader creates a Downloader for dir using the public portrait sources.
func NewDownloader(dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		Dir:         dir,
		Client:      &http.Client{Timeout: 30 * time.Second}, //nolint:exhaustruct,mnd // defaults are fine.
		Logger:      logger,
		PrimaryURL:  PrimaryURL,
		FallbackURL: FallbackURL,
	}
}

// Summary counts the outcome of a download run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

func (s Summary) String() string {
	return fmt.Sprintf("downloaded %d, skipped %d, failed %d", s.Downloaded, s.Skipped, s.Failed)
}

// Download saves the portrait of each legislator as its ImageFile. Existing files are skipped and individual
// failures are logged and counted so that one missing portrait does not stop the run.
func (d *Downloader) Download(ctx context.Context, legislators []models.Legislator) (Summary, error) {
	var summary Summary
	if err := os.MkdirAll(d.Dir, 0o755); err != nil { //nolint:mnd // rwxr-xr-x
		return summary, errors.Wrap(err, "create portrait dir", slog.String("dir", d.Dir))
	}
	for _, l := range legislators {
		if err := ctx.Err(); err != nil {
			return summary, errors.Wrap(err, "download cancelled")
		}
		dst := filepath.Join(d.Dir, imageFile(l))
		if _, err := os.Stat(dst); err == nil {
			summary.Skipped++
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return summary, errors.Wrap(err, "stat portrait", slog.String("path", dst))
		}

		if err := d.fetch(ctx, l.ID, dst); err != nil {
			d.Logger.LogAttrs(ctx, slog.LevelWarn, "portrait download failed",
				slog.String("bioguide_id", l.ID), errors.SlogError(err))
			summary.Failed++
			continue
		}
		d.Logger.LogAttrs(ctx, slog.LevelDebug, "portrait downloaded",
			slog.String("bioguide_id", l.ID), slog.String("path", dst))
		summary.Downloaded++
	}
	return summary, nil
}

func imageFile(l models.Legislator) string {
	if l.ImageFile != "" {
		return filepath.Base(l.ImageFile)
	}
	return l.ID + ".jpg"
}

// fetch tries the primary source first and the Bioguide archive second.
func (d *Downloader) fetch(ctx context.Context, id, dst string) error {
	urls := []string{fmt.Sprintf("%s/%s.jpg", d.PrimaryURL, id)}
	if id != "" {
		urls = append(urls, fmt.Sprintf("%s/%s/%s.jpg", d.FallbackURL, strings.ToUpper(id[:1]), id))
	}
	var errs []error
	for _, u := range urls {
		err := d.save(ctx, u, dst)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (d *Downloader) save(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "create request", slog.String("url", url))
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := d.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request", slog.String("url", url))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrap(errNotFound, "fetch portrait", slog.String("url", url))
	}
	if resp.StatusCode != http.StatusOK {
		return errors.New("unexpected status", slog.String("url", url), slog.Int("status", resp.StatusCode))
	}

	// dst only ever holds a complete download.
	tmp, err := os.CreateTemp(d.Dir, ".portrait-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err = io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write portrait", slog.String("url", url))
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return errors.Wrap(err, "rename portrait", slog.String("path", dst))
	}
	return nil
}
