// Package cache owns the redis client handed to the ledger rebuild lock.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the startup health check against redis.
const pingTimeout = 5 * time.Second

// New dials redis and verifies the connection. The ledger rebuild lock is
// the only consumer, so a failed ping is fatal at startup rather than at
// first posting.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}
	return client, nil
}
