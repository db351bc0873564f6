// Package roster holds the commands that build the representative roster and its portraits.
package roster

import (
	"context"
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/logging"
	"github.com/myrjola/repquiz/internal/portraits"
	"github.com/myrjola/repquiz/internal/repositories"
	"github.com/myrjola/repquiz/internal/roster"
	"github.com/myrjola/repquiz/internal/sqlite"
	"github.com/spf13/cobra"
	"log/slog"
	"os"
)

var Group = &cobra.Group{
	ID:    "roster",
	Title: "Roster operations",
}

func init() {
	Import.Flags().String("out", roster.DefaultPath, "path to the generated metadata JSON")
	Import.Flags().String("sqlite-url", "", "also replace the roster in this sqlite database")
	Portraits.Flags().String("roster", roster.DefaultPath, "metadata JSON file or http(s) URL")
	Portraits.Flags().String("dir", portraits.DefaultDir, "directory the portraits are saved to")
}

func newLogger() *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	})))
}

var Import = &cobra.Command{
	Use:     "import [legislators-current.yaml]",
	GroupID: "roster",
	Short:   "Import representatives",
	Long: `Converts the congress-legislators legislators-current.yaml into the metadata JSON the quiz reads.
Only members whose latest term is in the House are kept.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			out, _       = cmd.Flags().GetString("out")
			sqliteURL, _ = cmd.Flags().GetString("sqlite-url")
		)
		n, err := ImportRoster(cmd.Context(), args[0], out, sqliteURL, newLogger())
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Import error: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Imported %d representatives\n", n)
	},
}

var Portraits = &cobra.Command{
	Use:     "portraits",
	GroupID: "roster",
	Short:   "Download portraits",
	Long:    "Downloads the portrait of every representative in the roster that is not yet in the portrait directory.",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		var (
			source, _ = cmd.Flags().GetString("roster")
			dir, _    = cmd.Flags().GetString("dir")
			logger    = newLogger()
			ctx       = cmd.Context()
		)
		provider, err := roster.New(source, nil, logger)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Invalid roster: %v\n", err)
			os.Exit(1)
		}
		legislators, err := provider.Roster(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Roster error: %v\n", err)
			os.Exit(1)
		}
		summary, err := portraits.NewDownloader(dir, logger).Download(ctx, legislators)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Download error: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Fprintln(os.Stdout, summary)
	},
}

// ImportRoster converts the YAML at yamlPath into metadata JSON at outPath. When sqliteURL is set the roster in
// that database is replaced as well. Returns the number of imported representatives.
func ImportRoster(ctx context.Context, yamlPath, outPath, sqliteURL string, logger *slog.Logger) (int, error) {
	in, err := os.Open(yamlPath)
	if err != nil {
		return 0, errors.Wrap(err, "open yaml", slog.String("path", yamlPath))
	}
	defer func() {
		_ = in.Close()
	}()
	legislators, err := roster.ImportYAML(in, logger)
	if err != nil {
		return 0, errors.Wrap(err, "import yaml")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, errors.Wrap(err, "create metadata file", slog.String("path", outPath))
	}
	if err = roster.Encode(out, legislators); err != nil {
		_ = out.Close()
		return 0, errors.Wrap(err, "encode metadata")
	}
	if err = out.Close(); err != nil {
		return 0, errors.Wrap(err, "close metadata file")
	}

	if sqliteURL == "" {
		return len(legislators), nil
	}
	db, err := sqlite.NewDatabase(ctx, sqliteURL, logger)
	if err != nil {
		return 0, errors.Wrap(err, "open database", slog.String("url", sqliteURL))
	}
	defer func() {
		_ = db.Close()
	}()
	if err = repositories.NewLegislatorRepository(db, logger).ReplaceAll(ctx, legislators); err != nil {
		return 0, errors.Wrap(err, "replace roster")
	}
	return len(legislators), nil
}
