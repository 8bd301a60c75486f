// Package session keeps per-user state that outlives a request: refresh
// tokens and the list each user is currently working on.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is keyed by refresh token hash and by user id. Refresh tokens are
// single use: Consume returns the owner and forgets the token.
type Store interface {
	SaveRefreshToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, bool, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error

	SetCurrentList(ctx context.Context, userID, listID uuid.UUID) error
	CurrentList(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
	ClearCurrentList(ctx context.Context, userID uuid.UUID) error
}
