package db

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbdb "firebase.google.com/go/v4/db"
)

// Firebase wraps a Realtime Database client.
type Firebase struct {
	Client *fbdb.Client
}

// NewFirebase opens the app's default Realtime Database instance.
func NewFirebase(ctx context.Context, app *firebase.App) (*Firebase, error) {
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init realtime database: %w", err)
	}
	return &Firebase{Client: client}, nil
}

// Health performs a cheap read of the settings node.
func (f *Firebase) Health(ctx context.Context) error {
	var raw json.RawMessage
	return unavailable(f.Client.NewRef("settings").Get(ctx, &raw))
}

func (f *Firebase) Get(ctx context.Context, path string, dst any) (bool, error) {
	var raw json.RawMessage
	if err := f.Client.NewRef(path).Get(ctx, &raw); err != nil {
		return false, unavailable(fmt.Errorf("get %s: %w", path, err))
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func (f *Firebase) Set(ctx context.Context, path string, value any) error {
	if err := f.Client.NewRef(path).Set(ctx, value); err != nil {
		return unavailable(fmt.Errorf("set %s: %w", path, err))
	}
	return nil
}

// Update sends one multi-location PATCH against the root, which the database
// applies atomically.
func (f *Firebase) Update(ctx context.Context, updates map[string]any) error {
	payload := make(map[string]interface{}, len(updates))
	for path, value := range updates {
		payload["/"+JoinPath(SplitPath(path)...)] = value
	}
	if err := f.Client.NewRef("/").Update(ctx, payload); err != nil {
		return unavailable(fmt.Errorf("update: %w", err))
	}
	return nil
}

func (f *Firebase) Push(ctx context.Context, path string) (string, error) {
	return NewKey()
}
