// Package identity is the boundary to the authentication provider: it creates
// login identities and checks credentials, nothing else.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailInUse        = errors.New("email already in use")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNotSupported      = errors.New("operation not supported by provider")
	ErrNotFound          = errors.New("identity not found")
)

// Identity is the provider's view of an account. Sessions issued before
// TokensValidAfter were revoked.
type Identity struct {
	UID              string
	Disabled         bool
	TokensValidAfter time.Time
}

// Provider is implemented by Firebase and by the store-backed Local provider.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	DeleteIdentity(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
	RevokeSessions(ctx context.Context, uid string) error
	LookupIdentity(ctx context.Context, uid string) (Identity, error)
}
