package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"funnybanny-backend/internal/ports"
	"github.com/google/uuid"
)

// SplitPath turns "/children/abc/" into ["children", "abc"].
func SplitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinPath builds a store path from segments.
func JoinPath(segs ...string) string {
	return strings.Join(segs, "/")
}

// NewKey returns a time-ordered unique key, so pushed children sort by creation.
func NewKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return id.String(), nil
}

// unavailable wraps transport-level failures with ports.ErrUnavailable.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr),
		errors.As(err, &urlErr):
		return fmt.Errorf("%w: %v", ports.ErrUnavailable, err)
	}
	return err
}

// normalize converts an arbitrary value into the generic JSON tree the store holds:
// maps, slices, strings, float64, bool. Null object members are dropped.
func normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return prune(out), nil
}

func prune(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			child = prune(child)
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = child
		}
		if len(t) == 0 {
			return nil
		}
		return t
	case []any:
		for i := range t {
			t[i] = prune(t[i])
		}
		return t
	}
	return v
}

func decodeInto(src any, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
