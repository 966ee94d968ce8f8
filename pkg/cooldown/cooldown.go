// Package cooldown rate-limits repeat issuance of out-of-band links using
// Redis keys with a TTL. Taking a slot is a single SETNX, so concurrent
// requesters for the same email collapse to one winner.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrActive is returned while a previously taken slot has not expired yet.
var ErrActive = errors.New("cooldown active")

type Guard struct {
	client *redis.Client
	window time.Duration
}

// NewGuard creates a cooldown guard with the given window.
func NewGuard(client *redis.Client, window time.Duration) *Guard {
	return &Guard{
		client: client,
		window: window,
	}
}

// Take claims the cooldown slot for (scope, email). Returns ErrActive when
// the slot is already held.
func (g *Guard) Take(ctx context.Context, scope, email string) error {
	key := fmt.Sprintf("cooldown:%s:%s", scope, email)

	ok, err := g.client.SetNX(ctx, key, 1, g.window).Result()
	if err != nil {
		return fmt.Errorf("failed to take cooldown slot: %w", err)
	}
	if !ok {
		return ErrActive
	}

	return nil
}

// Release frees the slot early, e.g. when issuance failed after the slot
// was taken.
func (g *Guard) Release(ctx context.Context, scope, email string) error {
	key := fmt.Sprintf("cooldown:%s:%s", scope, email)

	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release cooldown slot: %w", err)
	}

	return nil
}
