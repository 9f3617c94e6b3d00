// Package session tracks JWTs revoked before their natural expiry.
package session

import (
	"context"
	"time"
)

// Denylist records revoked token ids. Entries only need to live as long as
// the token itself would have.
type Denylist interface {
	// Revoke stores the token id for ttl. A ttl <= 0 is a no-op.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether the token id is still denied.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
