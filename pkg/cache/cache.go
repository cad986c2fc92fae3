// Package cache provides the remember-or-compute TTL cache the catalog read
// path relies on. The contract is deliberately small: get-or-compute-and-store
// with a TTL, plus invalidation. Concurrent misses for the same key may
// recompute twice; callers must tolerate that.
package cache

import (
	"context"
	"time"
)

// ComputeFunc produces the value to store on a cache miss.
type ComputeFunc func() ([]byte, error)

// Cache is the provider surface used by the catalog orchestrator and the
// event listener.
type Cache interface {
	// Remember returns the cached bytes for key, computing and storing them
	// with the given TTL on a miss. A failing compute is never cached.
	Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error)

	// Forget drops the given keys. Missing keys are not an error.
	Forget(ctx context.Context, keys ...string) error

	// ForgetPrefix drops every key starting with prefix.
	ForgetPrefix(ctx context.Context, prefix string) error
}
