package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	s := Session{
		SessionID: "client-1",
		UserID:    "u1",
		Provider:  "password",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Create(ctx, s))
	assert.True(t, mr.Exists("session:client-1"))

	got, err := store.Get(ctx, "client-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "password", got.Provider)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	ttl := mr.TTL("session:client-1")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
}

func TestRedisStoreMissingAndDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	got, err := store.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Create(ctx, Session{SessionID: "c", UserID: "u", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Delete(ctx, "c"))
	require.NoError(t, store.Delete(ctx, "c"), "delete is idempotent")

	got, err = store.Get(ctx, "c")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRejectsInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Create(ctx, Session{UserID: "u", ExpiresAt: time.Now().Add(time.Minute)}))
	assert.Error(t, store.Create(ctx, Session{SessionID: "c", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)}))
}

func TestRedisStoreUpdateExpiredDeletes(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, Session{SessionID: "c", UserID: "u", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Update(ctx, Session{SessionID: "c", UserID: "u", ExpiresAt: time.Now().Add(-time.Second)}))

	assert.False(t, mr.Exists("session:c"))
}

func TestEnsureClientIDIssuesOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	id, err := EnsureClientID(rec, req, CookieOptions{Secure: true})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClientCookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(&http.Cookie{Name: ClientCookieName, Value: id})

	again, err := EnsureClientID(rec2, req2, CookieOptions{Secure: true})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Empty(t, rec2.Result().Cookies())
}

func TestCookieFlagsSetGetRemove(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	flags := NewCookieFlags(rec, req, CookieOptions{})

	_, ok := flags.Get(FlagKey)
	assert.False(t, ok)

	flags.Set(FlagKey, "true", FlagExpiryDays)
	v, ok := flags.Get(FlagKey)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, FlagKey, cookies[0].Name)
	assert.Equal(t, 7*24*60*60, cookies[0].MaxAge)

	flags.Remove(FlagKey)
	_, ok = flags.Get(FlagKey)
	assert.False(t, ok)

	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, -1, cookies[1].MaxAge)
}

func TestCookieFlagsReadsRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: FlagKey, Value: "true"})
	flags := NewCookieFlags(httptest.NewRecorder(), req, CookieOptions{})

	v, ok := flags.Get(FlagKey)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestCookieFlagsSealed(t *testing.T) {
	rec := httptest.NewRecorder()
	flags := NewCookieFlags(rec, httptest.NewRequest(http.MethodGet, "/", nil), CookieOptions{})

	flags.Seal()
	flags.Set(FlagKey, "true", FlagExpiryDays)

	v, ok := flags.Get(FlagKey)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}
