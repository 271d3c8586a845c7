package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"funnybanny-backend/internal/config"
	"funnybanny-backend/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps the document tree in a single table. Each row holds one entity,
// addressed by its first two path segments ("invoices/{id}", "settings/nursery");
// deeper paths are reached with jsonb path operators.
type Postgres struct {
	Pool *pgxpool.Pool
}

const nodesSchema = `
CREATE TABLE IF NOT EXISTS store_nodes (
	path       TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgres creates and verifies a pgx pool connection, then ensures the schema.
func NewPostgres(ctx context.Context, cfg config.Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", pgUnavailable(err))
	}

	if _, err := pool.Exec(ctx, nodesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// Health checks the database connectivity.
func (p *Postgres) Health(ctx context.Context) error {
	return pgUnavailable(p.Pool.Ping(ctx))
}

func (p *Postgres) Get(ctx context.Context, path string, dst any) (bool, error) {
	segs := SplitPath(path)
	switch len(segs) {
	case 0:
		return false, errors.New("get: empty path")
	case 1:
		return p.getCollection(ctx, segs[0], dst)
	}

	var raw []byte
	err := p.Pool.QueryRow(ctx,
		`SELECT value #> $2::text[] FROM store_nodes WHERE path = $1`,
		JoinPath(segs[:2]...), segs[2:],
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, pgUnavailable(fmt.Errorf("get %s: %w", path, err))
	}
	if raw == nil || string(raw) == "null" || string(raw) == "{}" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func (p *Postgres) getCollection(ctx context.Context, name string, dst any) (bool, error) {
	rows, err := p.Pool.Query(ctx,
		`SELECT path, value FROM store_nodes WHERE path LIKE $1 ORDER BY path`,
		name+"/%",
	)
	if err != nil {
		return false, pgUnavailable(fmt.Errorf("get %s: %w", name, err))
	}
	defer rows.Close()

	out := map[string]json.RawMessage{}
	for rows.Next() {
		var (
			path string
			raw  []byte
		)
		if err := rows.Scan(&path, &raw); err != nil {
			return false, err
		}
		out[strings.TrimPrefix(path, name+"/")] = raw
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	if len(out) == 0 {
		return false, nil
	}
	return true, decodeInto(out, dst)
}

func (p *Postgres) Set(ctx context.Context, path string, value any) error {
	return p.Update(ctx, map[string]any{path: value})
}

// Update applies all writes inside one transaction. Entity-level writes run before
// field-level writes so a new document can be patched in the same batch.
func (p *Postgres) Update(ctx context.Context, updates map[string]any) error {
	if len(updates) == 0 {
		return errors.New("empty update")
	}
	paths := make([]string, 0, len(updates))
	for path := range updates {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := len(SplitPath(paths[i])), len(SplitPath(paths[j]))
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return pgUnavailable(fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback(ctx)

	for _, path := range paths {
		if err := applyWrite(ctx, tx, path, updates[path]); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return pgUnavailable(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func applyWrite(ctx context.Context, tx pgx.Tx, path string, value any) error {
	segs := SplitPath(path)
	if len(segs) == 0 {
		return errors.New("update path must not be the root")
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}

	if len(segs) == 1 {
		if _, err := tx.Exec(ctx, `DELETE FROM store_nodes WHERE path LIKE $1`, segs[0]+"/%"); err != nil {
			return fmt.Errorf("clear %s: %w", path, err)
		}
		if v == nil {
			return nil
		}
		children, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("write %s: collection value must be an object", path)
		}
		for key, child := range children {
			if err := upsertNode(ctx, tx, JoinPath(segs[0], key), child); err != nil {
				return err
			}
		}
		return nil
	}

	key := JoinPath(segs[:2]...)
	if len(segs) == 2 {
		if v == nil {
			_, err := tx.Exec(ctx, `DELETE FROM store_nodes WHERE path = $1`, key)
			return err
		}
		return upsertNode(ctx, tx, key, v)
	}

	sub := segs[2:]
	if v == nil {
		return deleteNested(ctx, tx, key, sub)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// jsonb_set only creates the last key, so the row and every parent object must exist first.
	if _, err := tx.Exec(ctx,
		`INSERT INTO store_nodes (path, value, updated_at) VALUES ($1, '{}'::jsonb, now()) ON CONFLICT (path) DO NOTHING`,
		key); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i := 1; i < len(sub); i++ {
		if _, err := tx.Exec(ctx,
			`UPDATE store_nodes SET value = jsonb_set(value, $2::text[], '{}'::jsonb, true)
			WHERE path = $1 AND jsonb_typeof(value #> $2::text[]) IS DISTINCT FROM 'object'`,
			key, sub[:i]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if _, err := tx.Exec(ctx,
		`UPDATE store_nodes SET value = jsonb_set(value, $2::text[], $3::jsonb, true), updated_at = now() WHERE path = $1`,
		key, sub, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// deleteNested removes sub from the document at key, then prunes parents left
// empty, dropping the row itself when nothing remains.
func deleteNested(ctx context.Context, tx pgx.Tx, key string, sub []string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE store_nodes SET value = value #- $2::text[], updated_at = now() WHERE path = $1`,
		key, sub); err != nil {
		return fmt.Errorf("delete %s: %w", JoinPath(key, JoinPath(sub...)), err)
	}
	for i := len(sub) - 1; i > 0; i-- {
		if _, err := tx.Exec(ctx,
			`UPDATE store_nodes SET value = value #- $2::text[] WHERE path = $1 AND value #> $2::text[] = '{}'::jsonb`,
			key, sub[:i]); err != nil {
			return fmt.Errorf("prune %s: %w", key, err)
		}
	}
	_, err := tx.Exec(ctx, `DELETE FROM store_nodes WHERE path = $1 AND value = '{}'::jsonb`, key)
	return err
}

func upsertNode(ctx context.Context, tx pgx.Tx, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO store_nodes (path, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Push(ctx context.Context, path string) (string, error) {
	return NewKey()
}

func pgUnavailable(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", ports.ErrUnavailable, err)
	}
	return unavailable(err)
}
