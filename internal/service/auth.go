package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"funnybanny-backend/internal/config"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/identity"
	"funnybanny-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type AuthService struct {
	Config   config.Config
	Identity identity.Provider
	Users    repository.UserRepository
	Logger   *slog.Logger
	Now      func() time.Time
}

// Session is the signed-in account and its token pair.
type Session struct {
	AccessToken  string
	RefreshToken string
	AccountID    string
	Profile      domain.UserProfile
	ExpiresAt    time.Time
}

// Claims are the fields carried by an access token.
type Claims struct {
	AccountID string
	Role      domain.UserRole
	LinkID    string
	IssuedAt  time.Time
}

func (s AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	uid, err := s.Identity.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredential) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.startSession(ctx, uid, true)
}

// Exchange turns a provider ID token into a session. When the provider cannot verify
// tokens and a Google client id is configured, Google ID tokens are accepted, but only
// for accounts that already have a profile.
func (s AuthService) Exchange(ctx context.Context, idToken string) (*Session, error) {
	uid, err := s.Identity.VerifyIDToken(ctx, idToken)
	switch {
	case err == nil:
		return s.startSession(ctx, uid, true)
	case errors.Is(err, identity.ErrNotSupported) && s.Config.GoogleClientID != "":
		payload, gErr := idtoken.Validate(ctx, idToken, s.Config.GoogleClientID)
		if gErr != nil {
			return nil, fmt.Errorf("%w: google token: %v", ErrInvalidToken, gErr)
		}
		return s.startSession(ctx, payload.Subject, false)
	case errors.Is(err, identity.ErrInvalidCredential):
		return nil, ErrInvalidToken
	}
	return nil, err
}

// Refresh issues a new token pair. The identity must still exist and must not have
// signed out since the refresh token was issued. A refresh token minted for a
// profiled account never falls back to admin when the profile is gone.
func (s AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	ident, err := s.Identity.LookupIdentity(ctx, claims.AccountID)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		return nil, ErrInvalidToken
	case err != nil:
		return nil, err
	}
	if ident.Disabled || claims.IssuedAt.Before(ident.TokensValidAfter.Truncate(time.Second)) {
		return nil, ErrInvalidToken
	}
	sess, err := s.startSession(ctx, claims.AccountID, claims.Role == domain.RoleAdmin)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, ErrInvalidToken
	}
	return sess, err
}

// SignOut revokes provider sessions. Issued access tokens stay valid until they expire.
func (s AuthService) SignOut(ctx context.Context, accountID string) error {
	return s.Identity.RevokeSessions(ctx, accountID)
}

// Verify parses an access token.
func (s AuthService) Verify(token string) (Claims, error) {
	return s.parse(token, tokenTypeAccess)
}

// startSession loads the account's profile. Accounts without a profile were created
// by hand in the identity provider and are treated as admins.
func (s AuthService) startSession(ctx context.Context, uid string, allowMissingProfile bool) (*Session, error) {
	profile, err := s.Users.Get(ctx, uid)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if !allowMissingProfile {
			return nil, ErrInvalidCredentials
		}
		profile = &domain.UserProfile{Role: domain.RoleAdmin}
	case err != nil:
		return nil, err
	}
	if !profile.Role.Valid() {
		s.Logger.Warn("profile with unknown role", "account_id", uid, "role", profile.Role)
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(uid, *profile)
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) issueTokens(uid string, profile domain.UserProfile) (*Session, error) {
	now := s.now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        uid,
		"role":       profile.Role,
		"linkId":     profile.LinkID,
		"token_type": tokenTypeAccess,
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        uid,
		"role":       profile.Role,
		"token_type": tokenTypeRefresh,
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		AccountID:    uid,
		Profile:      profile,
		ExpiresAt:    accessExp,
	}, nil
}

func (s AuthService) parse(tokenStr, tokenType string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || mc["token_type"] != tokenType {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mc["role"].(string)
	link, _ := mc["linkId"].(string)
	claims := Claims{AccountID: sub, Role: domain.UserRole(role), LinkID: link}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time.UTC()
	}
	return claims, nil
}
