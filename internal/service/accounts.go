package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/identity"
	"funnybanny-backend/internal/metrics"
	"funnybanny-backend/internal/ports"
	"funnybanny-backend/internal/repository"
)

const (
	passwordCharset       = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultPasswordLength = 8
)

// GeneratePassword draws length characters uniformly from [a-zA-Z0-9].
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		length = DefaultPasswordLength
	}
	max := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}

type ProvisionFailure struct {
	LinkID string
	Name   string
	Email  string
	Reason string
}

type ProvisionResult struct {
	Credentials []domain.Credential
	Failures    []ProvisionFailure
	// Skipped lists requested ids that already have an account, have no email or do not exist.
	Skipped []string
}

// Noop reports that nothing was eligible for provisioning.
func (r ProvisionResult) Noop() bool {
	return len(r.Credentials) == 0 && len(r.Failures) == 0
}

type AccountService struct {
	Store     ports.Store
	Children  repository.ChildRepository
	Staff     repository.StaffRepository
	Identity  identity.Provider
	Activity  repository.ActivityLogRepository
	Logger    *slog.Logger
	Passwords func(int) (string, error)
}

// provisionTarget is one person who should get an account.
type provisionTarget struct {
	linkID      string
	name        string
	email       string
	phone       string
	accountPath string
}

// ProvisionStaff creates login accounts for the given staff members.
func (s AccountService) ProvisionStaff(ctx context.Context, actor string, ids []string) (ProvisionResult, error) {
	staff, err := s.Staff.List(ctx)
	if err != nil {
		return ProvisionResult{}, err
	}
	byID := make(map[string]domain.Staff, len(staff))
	for _, m := range staff {
		byID[m.ID] = m
	}
	var targets []provisionTarget
	var skipped []string
	for _, id := range dedupe(ids) {
		m, ok := byID[id]
		if !ok || m.AccountID != "" || m.Email == "" {
			skipped = append(skipped, id)
			continue
		}
		targets = append(targets, provisionTarget{
			linkID:      m.ID,
			name:        m.Name,
			email:       m.Email,
			phone:       m.Phone,
			accountPath: repository.StaffAccountPath(m.ID),
		})
	}
	return s.provision(ctx, actor, domain.RoleStaff, targets, skipped)
}

// ProvisionParents creates login accounts for the guardians of the given children.
func (s AccountService) ProvisionParents(ctx context.Context, actor string, childIDs []string) (ProvisionResult, error) {
	children, err := s.Children.List(ctx)
	if err != nil {
		return ProvisionResult{}, err
	}
	byID := make(map[string]domain.Child, len(children))
	for _, c := range children {
		byID[c.ID] = c
	}
	var targets []provisionTarget
	var skipped []string
	for _, id := range dedupe(childIDs) {
		c, ok := byID[id]
		if !ok || c.Guardian.AccountID != "" || c.Guardian.Email == "" {
			skipped = append(skipped, id)
			continue
		}
		targets = append(targets, provisionTarget{
			linkID:      c.ID,
			name:        c.Guardian.Name,
			email:       c.Guardian.Email,
			phone:       c.Guardian.Phone,
			accountPath: repository.GuardianAccountPath(c.ID),
		})
	}
	return s.provision(ctx, actor, domain.RoleParent, targets, skipped)
}

// provision creates one identity per target, isolating failures, then links every
// created identity in a single atomic write. If that write fails the identities
// created here are deleted again so their emails are not left reserved.
func (s AccountService) provision(ctx context.Context, actor string, role domain.UserRole, targets []provisionTarget, skipped []string) (ProvisionResult, error) {
	res := ProvisionResult{Skipped: skipped}
	if len(targets) == 0 {
		return res, nil
	}
	gen := s.Passwords
	if gen == nil {
		gen = GeneratePassword
	}

	updates := map[string]any{}
	for _, t := range targets {
		password, err := gen(DefaultPasswordLength)
		if err != nil {
			s.rollback(ctx, res.Credentials)
			return ProvisionResult{}, err
		}
		uid, err := s.Identity.CreateIdentity(ctx, t.email, password)
		if err != nil {
			reason := "account could not be created"
			if errors.Is(err, identity.ErrEmailInUse) {
				reason = "email already in use"
			}
			s.Logger.Warn("failed to create account", "role", role, "link_id", t.linkID, "err", err)
			metrics.AccountsProvisioned.WithLabelValues(string(role), "failed").Inc()
			res.Failures = append(res.Failures, ProvisionFailure{LinkID: t.linkID, Name: t.name, Email: t.email, Reason: reason})
			continue
		}
		updates[t.accountPath] = uid
		updates[repository.UserPath(uid)] = domain.UserProfile{Role: role, LinkID: t.linkID}
		res.Credentials = append(res.Credentials, domain.Credential{
			AccountID: uid,
			LinkID:    t.linkID,
			Name:      t.name,
			Email:     t.email,
			Phone:     t.phone,
			Password:  password,
		})
	}

	if len(res.Credentials) == 0 {
		return res, nil
	}
	if err := s.Store.Update(ctx, updates); err != nil {
		s.rollback(ctx, res.Credentials)
		return ProvisionResult{}, fmt.Errorf("link accounts: %w", err)
	}

	metrics.AccountsProvisioned.WithLabelValues(string(role), "created").Add(float64(len(res.Credentials)))
	s.Logger.Info("accounts provisioned", "role", role, "created", len(res.Credentials), "failed", len(res.Failures))
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		Title:   "Accounts",
		Message: fmt.Sprintf("%d %s account(s) created, %d failed", len(res.Credentials), role, len(res.Failures)),
		Actor:   actor,
		Type:    domain.LogInfo,
	}); err != nil {
		s.Logger.Warn("failed to write activity log", "err", err)
	}
	return res, nil
}

// rollback deletes identities created in a failed run so their emails are not left reserved.
func (s AccountService) rollback(ctx context.Context, created []domain.Credential) {
	for _, c := range created {
		if err := s.Identity.DeleteIdentity(ctx, c.AccountID); err != nil {
			s.Logger.Error("failed to roll back identity", "account_id", c.AccountID, "err", err)
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
