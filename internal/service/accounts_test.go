package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/identity"
	"funnybanny-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider hands out sequential uids and refuses emails listed in taken.
type fakeProvider struct {
	taken   map[string]bool
	broken  map[string]bool
	created []string
	deleted []string
}

func (f *fakeProvider) CreateIdentity(_ context.Context, email, _ string) (string, error) {
	if f.taken[email] {
		return "", identity.ErrEmailInUse
	}
	if f.broken[email] {
		return "", errors.New("provider timeout")
	}
	uid := "uid-" + strings.Split(email, "@")[0]
	f.created = append(f.created, uid)
	return uid, nil
}

func (f *fakeProvider) DeleteIdentity(_ context.Context, uid string) error {
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeProvider) SignIn(context.Context, string, string) (string, error) {
	return "", identity.ErrInvalidCredential
}

func (f *fakeProvider) VerifyIDToken(context.Context, string) (string, error) {
	return "", identity.ErrNotSupported
}

func (f *fakeProvider) RevokeSessions(context.Context, string) error { return nil }
func (f *fakeProvider) LookupIdentity(_ context.Context, uid string) (identity.Identity, error) {
	return identity.Identity{UID: uid}, nil
}

func fixedPassword(int) (string, error) { return "Secret12", nil }

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, err := GeneratePassword(DefaultPasswordLength)
		require.NoError(t, err)
		require.Len(t, p, 8)
		for _, r := range p {
			require.True(t, strings.ContainsRune(passwordCharset, r), "unexpected rune %q", r)
		}
		seen[p] = true
	}
	assert.Greater(t, len(seen), 45)

	p, err := GeneratePassword(0)
	require.NoError(t, err)
	assert.Len(t, p, DefaultPasswordLength)
}

func newAccountService(env *testEnv, provider identity.Provider) AccountService {
	return AccountService{
		Store:     env.store,
		Children:  env.children,
		Staff:     env.staff,
		Identity:  provider,
		Activity:  env.activity,
		Logger:    testLogger,
		Passwords: fixedPassword,
	}
}

func TestProvisionStaffIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	sara := env.addStaff(t, domain.Staff{Name: "Sara", Email: "sara@example.com", Phone: "0100"})
	omar := env.addStaff(t, domain.Staff{Name: "Omar", Email: "omar@example.com"})
	nour := env.addStaff(t, domain.Staff{Name: "Nour", Email: "nour@example.com"})
	linked := env.addStaff(t, domain.Staff{Name: "Hana", Email: "hana@example.com", AccountID: "uid-old"})
	noEmail := env.addStaff(t, domain.Staff{Name: "Ali"})

	provider := &fakeProvider{
		taken:  map[string]bool{"omar@example.com": true},
		broken: map[string]bool{"nour@example.com": true},
	}
	svc := newAccountService(env, provider)

	res, err := svc.ProvisionStaff(ctx, "admin", []string{sara.ID, omar.ID, nour.ID, linked.ID, noEmail.ID, "missing", sara.ID})
	require.NoError(t, err)

	require.Len(t, res.Credentials, 1)
	assert.Equal(t, domain.Credential{
		AccountID: "uid-sara",
		LinkID:    sara.ID,
		Name:      "Sara",
		Email:     "sara@example.com",
		Phone:     "0100",
		Password:  "Secret12",
	}, res.Credentials[0])
	assert.Equal(t, []ProvisionFailure{
		{LinkID: omar.ID, Name: "Omar", Email: "omar@example.com", Reason: "email already in use"},
		{LinkID: nour.ID, Name: "Nour", Email: "nour@example.com", Reason: "account could not be created"},
	}, res.Failures)
	assert.ElementsMatch(t, []string{linked.ID, noEmail.ID, "missing"}, res.Skipped)
	assert.False(t, res.Noop())

	got, err := env.staff.Get(ctx, sara.ID)
	require.NoError(t, err)
	assert.Equal(t, "uid-sara", got.AccountID)

	profile, err := env.users.Get(ctx, "uid-sara")
	require.NoError(t, err)
	assert.Equal(t, domain.UserProfile{Role: domain.RoleStaff, LinkID: sara.ID}, *profile)

	got, err = env.staff.Get(ctx, omar.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AccountID)
}

func TestProvisionParents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	lina := env.addChild(t, domain.Child{Name: "Lina", Guardian: domain.Guardian{Name: "Mona", Email: "mona@example.com"}})
	adam := env.addChild(t, domain.Child{Name: "Adam", Guardian: domain.Guardian{Name: "Rami", Email: "rami@example.com"}})

	svc := newAccountService(env, &fakeProvider{})
	res, err := svc.ProvisionParents(ctx, "admin", []string{lina.ID, adam.ID})
	require.NoError(t, err)
	require.Len(t, res.Credentials, 2)
	assert.Empty(t, res.Failures)

	child, err := env.children.Get(ctx, lina.ID)
	require.NoError(t, err)
	assert.Equal(t, "uid-mona", child.Guardian.AccountID)
	assert.Equal(t, "Lina", child.Name, "linking keeps the rest of the record")

	profile, err := env.users.Get(ctx, "uid-rami")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleParent, profile.Role)
	assert.Equal(t, adam.ID, profile.LinkID)

	again, err := svc.ProvisionParents(ctx, "admin", []string{lina.ID, adam.ID})
	require.NoError(t, err)
	assert.True(t, again.Noop())
	assert.ElementsMatch(t, []string{lina.ID, adam.ID}, again.Skipped)
}

func TestProvisionRollsBackWhenLinkFails(t *testing.T) {
	ctx := context.Background()
	var sara domain.Staff
	mem := seededMemory(t, func(e *testEnv) {
		sara = e.addStaff(t, domain.Staff{Name: "Sara", Email: "sara@example.com"})
	})
	env := newTestEnvWithStore(t, failingStore{Memory: mem, err: assert.AnError}, at(9, 0))
	provider := &fakeProvider{}
	svc := newAccountService(env, provider)

	_, err := svc.ProvisionStaff(ctx, "admin", []string{sara.ID})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"uid-sara"}, provider.deleted)

	_, err = repository.UserRepository{Store: mem}.Get(ctx, "uid-sara")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProvisionRollsBackWhenPasswordGenerationFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, at(9, 0))
	sara := env.addStaff(t, domain.Staff{Name: "Sara", Email: "sara@example.com"})
	omar := env.addStaff(t, domain.Staff{Name: "Omar", Email: "omar@example.com"})

	provider := &fakeProvider{}
	svc := newAccountService(env, provider)
	calls := 0
	svc.Passwords = func(n int) (string, error) {
		calls++
		if calls > 1 {
			return "", assert.AnError
		}
		return fixedPassword(n)
	}

	_, err := svc.ProvisionStaff(ctx, "admin", []string{sara.ID, omar.ID})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"uid-sara"}, provider.created)
	assert.Equal(t, []string{"uid-sara"}, provider.deleted)

	got, err := env.staff.Get(ctx, sara.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AccountID)
}
