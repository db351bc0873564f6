package contexthelpers

import (
	"context"
	"github.com/google/uuid"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

// GameID returns the game of the browser session and whether there is one.
func GameID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(gameIDContextKey).(uuid.UUID)
	return id, ok
}
