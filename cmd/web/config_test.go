package main

import (
	"github.com/myrjola/repquiz/internal/envstruct"
	"github.com/myrjola/repquiz/internal/portraits"
	"github.com/myrjola/repquiz/internal/roster"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_config_defaults(t *testing.T) {
	var cfg config
	require.NoError(t, envstruct.Populate(&cfg, func(string) (string, bool) { return "", false }))

	// The CLI writes to these locations by default.
	require.Equal(t, portraits.DefaultDir, cfg.PortraitDir)
	require.Equal(t, roster.DefaultPath, cfg.Roster)
	require.Equal(t, "reveal", cfg.Mode)
	require.Zero(t, cfg.RandomSeed)
}
