package db

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process Store used for local development and tests.
// It follows the realtime database semantics: empty nodes do not exist and
// a multi-path update is applied all or nothing.
type Memory struct {
	mu   sync.RWMutex
	root map[string]any
}

func NewMemory() *Memory {
	return &Memory{root: map[string]any{}}
}

func (m *Memory) Health(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Get(ctx context.Context, path string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var node any = m.root
	for _, seg := range SplitPath(path) {
		obj, ok := node.(map[string]any)
		if !ok {
			return false, nil
		}
		node, ok = obj[seg]
		if !ok {
			return false, nil
		}
	}
	if obj, ok := node.(map[string]any); ok && len(obj) == 0 {
		return false, nil
	}
	if err := decodeInto(node, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(ctx context.Context, path string, value any) error {
	return m.Update(ctx, map[string]any{path: value})
}

func (m *Memory) Update(ctx context.Context, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(updates) == 0 {
		return errors.New("empty update")
	}
	normalized := make(map[string]any, len(updates))
	for path, value := range updates {
		if len(SplitPath(path)) == 0 {
			return errors.New("update path must not be the root")
		}
		v, err := normalize(value)
		if err != nil {
			return err
		}
		normalized[path] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for path, value := range normalized {
		setAt(m.root, SplitPath(path), value)
	}
	return nil
}

func (m *Memory) Push(ctx context.Context, path string) (string, error) {
	return NewKey()
}

// setAt writes value at segs below node, creating or pruning intermediate nodes.
// It reports whether node became empty.
func setAt(node map[string]any, segs []string, value any) bool {
	key := segs[0]
	if len(segs) == 1 {
		if value == nil {
			delete(node, key)
		} else {
			node[key] = value
		}
		return len(node) == 0
	}
	child, ok := node[key].(map[string]any)
	if !ok {
		if value == nil {
			return len(node) == 0
		}
		child = map[string]any{}
		node[key] = child
	}
	if setAt(child, segs[1:], value) {
		delete(node, key)
	}
	return len(node) == 0
}
