package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist_RevokeAndExpire(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()

	// Freeze time via now indirection
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Minute))
	revoked, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
	require.Equal(t, 1, d.Len())

	// advance time beyond TTL
	base = base.Add(2 * time.Minute)
	revoked, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	d.PurgeExpired()
	require.Equal(t, 0, d.Len())
}

func TestMemoryDenylist_UnknownAndNonPositiveTTL(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()

	revoked, err := d.IsRevoked(ctx, "missing")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "jti-0", 0))
	revoked, _ = d.IsRevoked(ctx, "jti-0")
	require.False(t, revoked)
}

func TestMemoryDenylist_ConcurrentUse(t *testing.T) {
	d := NewMemoryDenylist()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = d.Revoke(ctx, id, time.Hour)
			_, _ = d.IsRevoked(ctx, id)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 26, d.Len())
}
