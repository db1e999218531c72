// AngelaMos | 2026
// manager.go

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/biolink/internal/config"
	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/middleware"
)

const keyPrefix = "session:"

// Store is the server-side session record backend. The redis implementation
// is the production one; tests substitute an in-memory fake.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	DelByPrefix(ctx context.Context, prefix string) (int, error)
}

var ErrNoRecord = errors.New("session record not found")

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Set(
	ctx context.Context,
	key, value string,
	ttl time.Duration,
) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set session record: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoRecord
	}
	if err != nil {
		return "", fmt.Errorf("get session record: %w", err)
	}
	return value, nil
}

func (s *redisStore) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}

// DelByPrefix walks matching keys with SCAN, never KEYS, so bulk
// invalidation does not stall the redis event loop.
func (s *redisStore) DelByPrefix(
	ctx context.Context,
	prefix string,
) (int, error) {
	var deleted int

	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("delete session record: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan session records: %w", err)
	}

	return deleted, nil
}

// Manager binds a signed client cookie to a server-stored session record.
// The cookie value is an HS256 JWS whose subject is a random session id; the
// record lives under the sha256 of that id with a fixed TTL, so stolen store
// dumps never expose usable cookie values.
type Manager struct {
	store   Store
	signKey jwk.Key
	cfg     config.SessionConfig
}

func NewManager(store Store, cfg config.SessionConfig) (*Manager, error) {
	signKey, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import session signing key: %w", err)
	}

	if setErr := signKey.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &Manager{
		store:   store,
		signKey: signKey,
		cfg:     cfg,
	}, nil
}

// Create establishes a session for the user and writes the cookie. Only the
// user id is serialized server-side. The expiry is fixed, not sliding.
func (m *Manager) Create(
	ctx context.Context,
	w http.ResponseWriter,
	userID string,
) error {
	sessionID, err := core.IssueToken()
	if err != nil {
		return fmt.Errorf("issue session id: %w", err)
	}

	if err := m.store.Set(
		ctx,
		keyPrefix+core.HashToken(sessionID),
		userID,
		m.cfg.TTL,
	); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	signed, err := m.signCookieValue(sessionID)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, m.buildCookie(signed, int(m.cfg.TTL.Seconds())))
	return nil
}

func (m *Manager) VerifySession(
	ctx context.Context,
	r *http.Request,
) (*middleware.SessionClaims, error) {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil, fmt.Errorf(
			"verify session: missing cookie: %w",
			core.ErrUnauthorized,
		)
	}

	sessionID, err := m.parseCookieValue(cookie.Value)
	if err != nil {
		return nil, err
	}

	recordKey := keyPrefix + core.HashToken(sessionID)

	userID, err := m.store.Get(ctx, recordKey)
	if errors.Is(err, ErrNoRecord) {
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("verify session: %w", err)
	}

	return &middleware.SessionClaims{
		SessionID: recordKey,
		UserID:    userID,
	}, nil
}

// Destroy removes the server-side record and expires the cookie. A missing
// or mangled cookie is not an error; logout is idempotent.
func (m *Manager) Destroy(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
) error {
	defer http.SetCookie(w, m.buildCookie("", -1))

	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil
	}

	sessionID, err := m.parseCookieValue(cookie.Value)
	if err != nil {
		return nil
	}

	if err := m.store.Del(ctx, keyPrefix+core.HashToken(sessionID)); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	return nil
}

// InvalidateAll drops every live session record. Existing cookies keep
// verifying as signatures but fail the store lookup, which is the whole
// point of keeping sessions server-side.
func (m *Manager) InvalidateAll(ctx context.Context) (int, error) {
	return m.store.DelByPrefix(ctx, keyPrefix)
}

func (m *Manager) signCookieValue(sessionID string) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		Subject(sessionID).
		IssuedAt(now).
		Expiration(now.Add(m.cfg.TTL)).
		NotBefore(now).
		Build()
	if err != nil {
		return "", fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.signKey))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return string(signed), nil
}

func (m *Manager) parseCookieValue(value string) (string, error) {
	token, err := jwt.Parse(
		[]byte(value),
		jwt.WithKey(jwa.HS256(), m.signKey),
		jwt.WithValidate(true),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return "", fmt.Errorf("verify session: %w", core.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify session: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", fmt.Errorf(
			"verify session: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	return subject, nil
}

func (m *Manager) buildCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

var _ middleware.SessionVerifier = (*Manager)(nil)
