package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/repquiz/cmd/cli/play"
	"github.com/myrjola/repquiz/cmd/cli/roster"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(roster.Group)
	rootCmd.AddCommand(roster.Import, roster.Portraits)
	rootCmd.AddGroup(play.Group)
	rootCmd.AddCommand(play.Cmd)
}

var rootCmd = &cobra.Command{
	Use:  "repquiz-cli",
	Long: `Command line utilities for the Representative Party Quiz https://github.com/myrjola/repquiz`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
