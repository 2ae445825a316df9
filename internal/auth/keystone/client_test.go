package keystone

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/credentials"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"
	"github.com/MarcoTuMD/Template-Admin/internal/session"
)

type fakeAccounts struct {
	users map[string]string // email -> password
}

func (f *fakeAccounts) Register(_ context.Context, email, password string) (string, error) {
	if _, ok := f.users[email]; ok {
		return "", credentials.ErrEmailInUse
	}
	f.users[email] = password
	return "user-" + email, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, email, password string) (string, error) {
	if pw, ok := f.users[email]; !ok || pw != password {
		return "", credentials.ErrInvalidCredentials
	}
	return "user-" + email, nil
}

type fakeProfiles struct{}

func (fakeProfiles) Credential(_ context.Context, userID, primary string) (*auth.Credential, error) {
	return &auth.Credential{
		ID:           userID,
		Email:        userID[len("user-"):],
		ProviderData: []auth.ProviderInfo{{ProviderID: primary}},
	}, nil
}

type fakeOAuth struct {
	identity *auth.Identity
	err      error
}

func (f *fakeOAuth) Name() string { return "google" }
func (f *fakeOAuth) AuthCodeURL(state, _ string) string { return "https://idp/?state=" + state }
func (f *fakeOAuth) ExchangeCode(_ context.Context, code, verifier string) (*auth.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if code != "code-1" || verifier != "verifier-1" {
		return nil, errors.New("bad grant")
	}
	return f.identity, nil
}

type emailResolver struct{}

func (emailResolver) Resolve(_ context.Context, id *auth.Identity) (string, error) {
	return "user-" + id.Email, nil
}

type clientFixture struct {
	client   *Client
	sessions *session.RedisStore
	mr       *miniredis.Miniredis
}

func newClientFixture(t *testing.T) *clientFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions := session.NewRedisStore(rdb)
	google := &fakeOAuth{identity: &auth.Identity{Provider: "google", ProviderUserID: "g-1", Email: "g@x.com"}}

	c := New(Options{
		Accounts:   &fakeAccounts{users: map[string]string{"a@x.com": "correct horse"}},
		Providers:  provider.NewRegistry(google),
		Resolver:   emailResolver{},
		Profiles:   fakeProfiles{},
		Sessions:   sessions,
		Tokens:     NewTokenIssuer(testKey, "keystone", time.Hour),
		Feed:       NewFeed(rdb),
		SessionTTL: time.Hour,
	})
	return &clientFixture{client: c, sessions: sessions, mr: mr}
}

func nextEvent(t *testing.T, sub auth.Subscription) auth.CredentialEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no credential event")
		return auth.CredentialEvent{}
	}
}

func TestSignInCreatesSession(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	cred, err := f.client.Bind("client-1").SignIn(ctx, "a@x.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", cred.Email)
	assert.Equal(t, "password", cred.ProviderData[0].ProviderID)

	s, err := f.sessions.Get(ctx, "client-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "user-a@x.com", s.UserID)
	assert.Equal(t, "password", s.Provider)
}

func TestSignInErrorsPassThrough(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	_, err := f.client.Bind("client-1").SignIn(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, credentials.ErrInvalidCredentials)

	_, err = f.client.Bind("client-1").CreateAccount(ctx, "a@x.com", "whatever")
	assert.ErrorIs(t, err, credentials.ErrEmailInUse)

	s, err := f.sessions.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSignInFederated(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	b := f.client.Bind("client-1")

	cred, err := b.SignInFederated(ctx, auth.FederatedGrant{Provider: "google", Code: "code-1", CodeVerifier: "verifier-1"})
	require.NoError(t, err)
	assert.Equal(t, "g@x.com", cred.Email)
	assert.Equal(t, "google", cred.ProviderData[0].ProviderID)

	_, err = b.SignInFederated(ctx, auth.FederatedGrant{Provider: "myspace"})
	assert.ErrorIs(t, err, provider.ErrUnknownProvider)
}

func TestSignOutRemovesSession(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	b := f.client.Bind("client-1")

	_, err := b.SignIn(ctx, "a@x.com", "correct horse")
	require.NoError(t, err)
	require.NoError(t, b.SignOut(ctx))
	assert.False(t, f.mr.Exists("session:client-1"))

	require.NoError(t, b.SignOut(ctx), "signing out twice is fine")
}

func TestWatchEmitsCurrentThenChanges(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()
	b := f.client.Bind("client-1")

	sub, err := b.Watch(ctx)
	require.NoError(t, err)
	defer sub.Close()

	first := nextEvent(t, sub)
	require.NoError(t, first.Err)
	assert.Nil(t, first.Credential, "nobody signed in yet")

	_, err = b.SignIn(ctx, "a@x.com", "correct horse")
	require.NoError(t, err)

	ev := nextEvent(t, sub)
	require.NoError(t, ev.Err)
	require.NotNil(t, ev.Credential)
	assert.Equal(t, "a@x.com", ev.Credential.Email)

	require.NoError(t, b.SignOut(ctx))
	ev = nextEvent(t, sub)
	assert.Nil(t, ev.Credential)
}

func TestWatchIsScopedToClient(t *testing.T) {
	f := newClientFixture(t)
	ctx := context.Background()

	_, err := f.client.Bind("client-1").SignIn(ctx, "a@x.com", "correct horse")
	require.NoError(t, err)

	sub, err := f.client.Bind("client-2").Watch(ctx)
	require.NoError(t, err)
	defer sub.Close()

	first := nextEvent(t, sub)
	assert.Nil(t, first.Credential)
}

func TestWatchCloseIsIdempotent(t *testing.T) {
	f := newClientFixture(t)

	sub, err := f.client.Bind("client-1").Watch(context.Background())
	require.NoError(t, err)

	nextEvent(t, sub)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestTokenFromBinding(t *testing.T) {
	f := newClientFixture(t)

	raw, err := f.client.Bind("client-1").Token(context.Background(), testCredential)
	require.NoError(t, err)

	claims, err := f.client.VerifyToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
}

func TestWatchRefreshesPeriodically(t *testing.T) {
	f := newClientFixture(t)
	f.client.opts.RefreshEvery = 20 * time.Millisecond
	ctx := context.Background()
	b := f.client.Bind("client-1")

	_, err := b.SignIn(ctx, "a@x.com", "correct horse")
	require.NoError(t, err)

	sub, err := b.Watch(ctx)
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		ev := nextEvent(t, sub)
		require.NotNil(t, ev.Credential)
		assert.Equal(t, "a@x.com", ev.Credential.Email)
	}
}
