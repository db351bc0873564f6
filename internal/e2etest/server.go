package e2etest

import (
	"context"
	"fmt"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/logging"
	"io"
	"log/slog"
)

// Server is a quiz server started from its run function.
type Server struct {
	url    string
	client *Client
}

// LogAddrKey is the log attribute under which the server reports its listen address.
const LogAddrKey = "addr"

// RunFunc has the signature of the run function of cmd/web.
type RunFunc func(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error

// StartServer runs the server until ctx is cancelled and returns once /api/healthy answers.
//
// Server logs go to logSink, usually [io.Discard]. lookupEnv replaces [os.LookupEnv] for configuration so that
// tests can pass "localhost:0" as the address. The dynamically allocated address is picked from the first log
// record carrying [LogAddrKey].
func StartServer(
	ctx context.Context,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run RunFunc,
) (*Server, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource: false,
		Level:     slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == LogAddrKey {
				select {
				case addrCh <- a.Value.String():
				default:
				}
			}
			return a
		},
	})))

	go func() {
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	var addr string
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(context.Cause(ctx), "server stopped before listening")
	case addr = <-addrCh:
	}

	serverURL := fmt.Sprintf("http://%s", addr)
	client, err := NewClient(serverURL)
	if err != nil {
		return nil, errors.Wrap(err, "new client")
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, errors.Wrap(err, "wait for ready", slog.String("url", serverURL))
	}
	return &Server{url: serverURL, client: client}, nil
}

// Client returns a client with its own cookie jar, i.e. its own browser session.
func (s *Server) Client() *Client {
	return s.client
}

func (s *Server) URL() string {
	return s.url
}
