package identity

import (
	"context"
	"testing"
	"time"

	"funnybanny-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLocalLifecycle(t *testing.T) {
	ctx := context.Background()
	l := Local{Store: db.NewMemory(), Cost: bcrypt.MinCost}

	uid, err := l.CreateIdentity(ctx, "Mona@Example.com", "s3cretPw")
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	_, err = l.CreateIdentity(ctx, " mona@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailInUse, "emails are compared case-insensitively")

	got, err := l.SignIn(ctx, "mona@example.com", "s3cretPw")
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	_, err = l.SignIn(ctx, "mona@example.com", "S3cretPw")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, err = l.SignIn(ctx, "nobody@example.com", "s3cretPw")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	require.NoError(t, l.DeleteIdentity(ctx, uid))
	_, err = l.SignIn(ctx, "mona@example.com", "s3cretPw")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = l.CreateIdentity(ctx, "mona@example.com", "again")
	assert.NoError(t, err, "a deleted identity frees its email")

	assert.NoError(t, l.DeleteIdentity(ctx, "unknown"))
}

func TestLocalDoesNotVerifyTokens(t *testing.T) {
	l := Local{Store: db.NewMemory()}
	_, err := l.VerifyIDToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.NoError(t, l.RevokeSessions(context.Background(), "uid"))
}

func TestLocalRevokeSessions(t *testing.T) {
	ctx := context.Background()
	signOut := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	l := Local{Store: db.NewMemory(), Cost: bcrypt.MinCost, Now: func() time.Time { return signOut }}

	uid, err := l.CreateIdentity(ctx, "mona@example.com", "s3cretPw")
	require.NoError(t, err)
	ident, err := l.LookupIdentity(ctx, uid)
	require.NoError(t, err)
	assert.True(t, ident.TokensValidAfter.IsZero())

	require.NoError(t, l.RevokeSessions(ctx, uid))
	ident, err = l.LookupIdentity(ctx, uid)
	require.NoError(t, err)
	assert.True(t, ident.TokensValidAfter.Equal(signOut))

	_, err = l.SignIn(ctx, "mona@example.com", "s3cretPw")
	assert.NoError(t, err, "revoking sessions keeps the password")

	_, err = l.LookupIdentity(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}
