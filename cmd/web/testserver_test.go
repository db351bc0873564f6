package main

import (
	"context"
	"github.com/myrjola/repquiz/internal/e2etest"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
)

// testLookupEnv returns a lookupEnv serving an in-memory database and the test roster. overrides take precedence.
func testLookupEnv(overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"QUIZ_ADDR":         "localhost:0",
		"QUIZ_SQLITE_URL":   ":memory:",
		"QUIZ_ROSTER":       "testdata/roster.json",
		"QUIZ_PORTRAIT_DIR": "testdata/portraits",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// startTestServer starts the application and stops it when the test finishes.
func startTestServer(t *testing.T, overrides map[string]string) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv(overrides), run)
	require.NoError(t, err)
	return server
}
