package session

import (
	"context"
	"sync"
	"time"
)

// purgeEvery bounds how many revocations may pass between sweeps of
// expired entries.
const purgeEvery = 64

// now is a small indirection to allow test stubbing if needed.
var now = time.Now

// MemoryDenylist keeps revoked token ids in a map guarded by a RWMutex.
// Expired entries are treated as absent and dropped lazily.
type MemoryDenylist struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	writes  int
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{expires: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.expires[tokenID] = now().Add(ttl)
	d.writes++
	if d.writes%purgeEvery == 0 {
		d.purgeLocked()
	}
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	exp, ok := d.expires[tokenID]
	if !ok {
		return false, nil
	}
	return now().Before(exp), nil
}

// Len returns the number of entries that have not expired yet.
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	count := 0
	ts := now()
	for _, exp := range d.expires {
		if ts.Before(exp) {
			count++
		}
	}
	return count
}

// PurgeExpired removes entries whose tokens have expired.
func (d *MemoryDenylist) PurgeExpired() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.purgeLocked()
}

func (d *MemoryDenylist) purgeLocked() {
	ts := now()
	for id, exp := range d.expires {
		if !ts.Before(exp) {
			delete(d.expires, id)
		}
	}
}

// Ensure MemoryDenylist implements Denylist at compile time.
var _ Denylist = (*MemoryDenylist)(nil)
