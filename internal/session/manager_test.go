// AngelaMos | 2026
// manager_test.go

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/biolink/internal/config"
	"github.com/carterperez-dev/biolink/internal/core"
)

type memStore struct {
	records map[string]memRecord
}

type memRecord struct {
	value     string
	expiresAt time.Time
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]memRecord)}
}

func (s *memStore) Set(
	ctx context.Context,
	key, value string,
	ttl time.Duration,
) error {
	s.records[key] = memRecord{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	rec, ok := s.records[key]
	if !ok || time.Now().After(rec.expiresAt) {
		delete(s.records, key)
		return "", ErrNoRecord
	}
	return rec.value, nil
}

func (s *memStore) Del(ctx context.Context, key string) error {
	delete(s.records, key)
	return nil
}

func (s *memStore) DelByPrefix(
	ctx context.Context,
	prefix string,
) (int, error) {
	deleted := 0
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			delete(s.records, key)
			deleted++
		}
	}
	return deleted, nil
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		CookieName: "biolink_session",
		TTL:        time.Hour,
	}
}

func newTestManager(t *testing.T) (*Manager, *memStore) {
	t.Helper()

	store := newMemStore()
	mgr, err := NewManager(store, testConfig())
	require.NoError(t, err)
	return mgr, store
}

func createSession(t *testing.T, mgr *Manager, userID string) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, mgr.Create(context.Background(), rec, userID))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func requestWithCookie(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	return req
}

func TestCreateSetsHardenedCookie(t *testing.T) {
	mgr, store := newTestManager(t)

	cookie := createSession(t, mgr, "user-1")

	assert.Equal(t, "biolink_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	assert.Len(t, store.records, 1)

	// The store must hold neither the cookie value nor the raw session id.
	for key := range store.records {
		assert.NotContains(t, cookie.Value, strings.TrimPrefix(key, "session:"))
	}
}

func TestVerifySessionRoundTrip(t *testing.T) {
	mgr, _ := newTestManager(t)

	cookie := createSession(t, mgr, "user-1")

	claims, err := mgr.VerifySession(
		context.Background(),
		requestWithCookie(cookie),
	)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.SessionID)
}

func TestVerifySessionMissingCookie(t *testing.T) {
	mgr, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := mgr.VerifySession(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestVerifySessionTamperedCookie(t *testing.T) {
	mgr, _ := newTestManager(t)

	cookie := createSession(t, mgr, "user-1")
	cookie.Value += "x"

	_, err := mgr.VerifySession(
		context.Background(),
		requestWithCookie(cookie),
	)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifySessionForeignSignature(t *testing.T) {
	mgr, _ := newTestManager(t)

	otherCfg := testConfig()
	otherCfg.Secret = "ffffffffffffffffffffffffffffffff"
	other, err := NewManager(newMemStore(), otherCfg)
	require.NoError(t, err)

	cookie := createSession(t, other, "user-1")

	_, err = mgr.VerifySession(
		context.Background(),
		requestWithCookie(cookie),
	)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestDestroyRevokesSession(t *testing.T) {
	mgr, store := newTestManager(t)

	cookie := createSession(t, mgr, "user-1")

	rec := httptest.NewRecorder()
	require.NoError(
		t,
		mgr.Destroy(context.Background(), rec, requestWithCookie(cookie)),
	)
	assert.Empty(t, store.records)

	// The expired cookie is pushed back to the browser.
	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)

	// The old cookie no longer verifies: valid signature, dead record.
	_, err := mgr.VerifySession(
		context.Background(),
		requestWithCookie(cookie),
	)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestDestroyIsIdempotent(t *testing.T) {
	mgr, _ := newTestManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, mgr.Destroy(context.Background(), rec, req))
}

func TestInvalidateAll(t *testing.T) {
	mgr, store := newTestManager(t)

	cookieA := createSession(t, mgr, "user-a")
	cookieB := createSession(t, mgr, "user-b")
	require.Len(t, store.records, 2)

	count, err := mgr.InvalidateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, cookie := range []*http.Cookie{cookieA, cookieB} {
		_, err := mgr.VerifySession(
			context.Background(),
			requestWithCookie(cookie),
		)
		assert.ErrorIs(t, err, core.ErrTokenExpired)
	}
}

func TestExpiredRecordRejected(t *testing.T) {
	store := newMemStore()
	cfg := testConfig()
	mgr, err := NewManager(store, cfg)
	require.NoError(t, err)

	cookie := createSession(t, mgr, "user-1")

	// Simulate the redis TTL firing.
	for key, rec := range store.records {
		rec.expiresAt = time.Now().Add(-time.Minute)
		store.records[key] = rec
	}

	_, err = mgr.VerifySession(
		context.Background(),
		requestWithCookie(cookie),
	)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}
