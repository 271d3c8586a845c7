package identity

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

const (
	pathIdentities = "identities"
	pathEmailIndex = "identityEmails"
)

type localIdentity struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	// RevokedAt is unix seconds of the last sign-out.
	RevokedAt int64 `json:"revokedAt,omitempty"`
}

// Local keeps identities in the data store with bcrypt password hashes.
// It is meant for development and for deployments without Firebase Auth.
type Local struct {
	Store ports.Store
	Cost  int
	Now   func() time.Time
}

func (l Local) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func emailKey(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.ToLower(strings.TrimSpace(email))))
}

func (l Local) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	var existing string
	found, err := l.Store.Get(ctx, db.JoinPath(pathEmailIndex, emailKey(email)), &existing)
	if err != nil {
		return "", err
	}
	if found {
		return "", ErrEmailInUse
	}
	cost := l.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	uid, err := l.Store.Push(ctx, pathIdentities)
	if err != nil {
		return "", err
	}
	err = l.Store.Update(ctx, map[string]any{
		db.JoinPath(pathIdentities, uid):            localIdentity{Email: strings.ToLower(email), PasswordHash: string(hash)},
		db.JoinPath(pathEmailIndex, emailKey(email)): uid,
	})
	if err != nil {
		return "", fmt.Errorf("create identity: %w", err)
	}
	return uid, nil
}

func (l Local) DeleteIdentity(ctx context.Context, uid string) error {
	var ident localIdentity
	found, err := l.Store.Get(ctx, db.JoinPath(pathIdentities, uid), &ident)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return l.Store.Update(ctx, map[string]any{
		db.JoinPath(pathIdentities, uid):                   nil,
		db.JoinPath(pathEmailIndex, emailKey(ident.Email)): nil,
	})
}

func (l Local) SignIn(ctx context.Context, email, password string) (string, error) {
	var uid string
	found, err := l.Store.Get(ctx, db.JoinPath(pathEmailIndex, emailKey(email)), &uid)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrInvalidCredential
	}
	var ident localIdentity
	found, err = l.Store.Get(ctx, db.JoinPath(pathIdentities, uid), &ident)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredential
		}
		return "", err
	}
	return uid, nil
}

func (l Local) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	return "", ErrNotSupported
}

// RevokeSessions records the sign-out time; refresh tokens issued earlier stop working.
func (l Local) RevokeSessions(ctx context.Context, uid string) error {
	if _, err := l.LookupIdentity(ctx, uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return l.Store.Set(ctx, db.JoinPath(pathIdentities, uid, "revokedAt"), l.now().Unix())
}

func (l Local) LookupIdentity(ctx context.Context, uid string) (Identity, error) {
	var ident localIdentity
	found, err := l.Store.Get(ctx, db.JoinPath(pathIdentities, uid), &ident)
	if err != nil {
		return Identity{}, err
	}
	if !found {
		return Identity{}, ErrNotFound
	}
	out := Identity{UID: uid}
	if ident.RevokedAt > 0 {
		out.TokensValidAfter = time.Unix(ident.RevokedAt, 0)
	}
	return out, nil
}
