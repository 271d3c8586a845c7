package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// Firebase uses the Admin SDK for identity management and the Identity Toolkit
// REST API for password sign-in, which the Admin SDK does not offer.
type Firebase struct {
	Auth    *fbauth.Client
	Toolkit *identitytoolkit.Service
}

// NewFirebase builds the provider. apiKey may be empty, in which case SignIn is
// unavailable and clients must sign in on their side and exchange an ID token.
func NewFirebase(ctx context.Context, client *fbauth.Client, apiKey string) (*Firebase, error) {
	f := &Firebase{Auth: client}
	if apiKey != "" {
		svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("init identity toolkit: %w", err)
		}
		f.Toolkit = svc
	}
	return f, nil
}

func (f *Firebase) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)
	u, err := f.Auth.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return "", ErrEmailInUse
		}
		return "", fmt.Errorf("create identity: %w", err)
	}
	return u.UID, nil
}

func (f *Firebase) DeleteIdentity(ctx context.Context, uid string) error {
	if err := f.Auth.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (string, error) {
	if f.Toolkit == nil {
		return "", ErrNotSupported
	}
	resp, err := f.Toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if isCredentialError(err) {
			return "", ErrInvalidCredential
		}
		return "", fmt.Errorf("sign in: %w", err)
	}
	return resp.LocalId, nil
}

func isCredentialError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := apiErr.Message
	for _, code := range []string{"INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "USER_DISABLED"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return apiErr.Code == 400
}

func (f *Firebase) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	tok, err := f.Auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return tok.UID, nil
}

func (f *Firebase) RevokeSessions(ctx context.Context, uid string) error {
	return f.Auth.RevokeRefreshTokens(ctx, uid)
}

func (f *Firebase) LookupIdentity(ctx context.Context, uid string) (Identity, error) {
	u, err := f.Auth.GetUser(ctx, uid)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, fmt.Errorf("lookup identity: %w", err)
	}
	return Identity{
		UID:              u.UID,
		Disabled:         u.Disabled,
		TokensValidAfter: time.UnixMilli(u.TokensValidAfterMillis),
	}, nil
}
