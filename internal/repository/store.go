package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/ports"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// listCollection decodes every child of path, keyed by id, in key order.
func listCollection[T any](ctx context.Context, store ports.Store, path string, setID func(*T, string)) ([]T, error) {
	var raw map[string]T
	found, err := store.Get(ctx, path, &raw)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	if !found {
		return []T{}, nil
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		item := raw[k]
		setID(&item, k)
		out = append(out, item)
	}
	return out, nil
}

func getOne[T any](ctx context.Context, store ports.Store, path string) (*T, error) {
	var item T
	found, err := store.Get(ctx, path, &item)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &item, nil
}

// DeletePaths builds the multi-path update that removes ids from collection.
func DeletePaths(collection string, ids []string) map[string]any {
	updates := make(map[string]any, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		updates[db.JoinPath(collection, id)] = nil
	}
	return updates
}
