package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

// DeviceTokenRepository keeps push tokens per account under "deviceTokens/{accountId}".
type DeviceTokenRepository struct {
	Store ports.Store
}

type RegisterTokenInput struct {
	AccountID string
	Token     string
	Platform  string
}

// tokenKey hashes the token since raw FCM tokens contain characters not allowed in keys.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

func (r DeviceTokenRepository) Register(ctx context.Context, in RegisterTokenInput) error {
	return r.Store.Set(ctx, db.JoinPath(domain.PathDeviceTokens, in.AccountID, tokenKey(in.Token)), domain.DeviceToken{
		Token:        in.Token,
		Platform:     in.Platform,
		RegisteredAt: time.Now().UTC(),
	})
}

func (r DeviceTokenRepository) List(ctx context.Context, accountID string) ([]domain.DeviceToken, error) {
	return listCollection(ctx, r.Store, db.JoinPath(domain.PathDeviceTokens, accountID), func(*domain.DeviceToken, string) {})
}

func (r DeviceTokenRepository) Remove(ctx context.Context, accountID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	updates := make(map[string]any, len(tokens))
	for _, t := range tokens {
		updates[db.JoinPath(domain.PathDeviceTokens, accountID, tokenKey(t))] = nil
	}
	return r.Store.Update(ctx, updates)
}
