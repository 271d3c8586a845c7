package ports

import (
	"context"
	"errors"
)

// ErrUnavailable marks a failure to reach the backing store at all, as opposed to a
// failing request. Callers may offer a retry.
var ErrUnavailable = errors.New("data store unavailable")

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Store is a hierarchical JSON document store addressed by slash-separated paths
// such as "children/{id}" or "settings/nursery".
type Store interface {
	HealthChecker

	// Get decodes the value at path into dst. It reports false when nothing is stored there.
	Get(ctx context.Context, path string, dst any) (bool, error)
	// Set replaces the value at path.
	Set(ctx context.Context, path string, value any) error
	// Update applies every path/value pair atomically. A nil value deletes the path.
	Update(ctx context.Context, updates map[string]any) error
	// Push returns a new unique child key under path without writing anything.
	Push(ctx context.Context, path string) (string, error)
}
