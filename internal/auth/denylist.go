package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisDenylistPrefix = "jwt:denylist:"

// MemoryDenylist keeps revoked token ids in process memory until they
// expire.
type MemoryDenylist struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		items: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Claim denylists jti and reports whether this call added it. Only one of
// several concurrent claims of the same jti succeeds.
func (d *MemoryDenylist) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweep(now)
	if _, ok := d.items[jti]; ok {
		return false, nil
	}
	if !until.After(now) {
		return false, nil
	}
	d.items[jti] = until
	return true, nil
}

func (d *MemoryDenylist) sweep(now time.Time) {
	for id, exp := range d.items {
		if !exp.After(now) {
			delete(d.items, id)
		}
	}
}

func (d *MemoryDenylist) Contains(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.items[jti]
	return ok && exp.After(d.now()), nil
}

// RedisDenylist shares revoked token ids between instances; keys expire
// together with the token.
type RedisDenylist struct {
	rdb *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) *RedisDenylist {
	return &RedisDenylist{rdb: rdb}
}

func (d *RedisDenylist) Claim(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return false, nil
	}
	ok, err := d.rdb.SetNX(ctx, redisDenylistPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim token: %w", err)
	}
	return ok, nil
}

func (d *RedisDenylist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, redisDenylistPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check denylist: %w", err)
	}
	return n > 0, nil
}
