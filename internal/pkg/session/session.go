package session

import (
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/FeeFox/internal/pkg/cache"
	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

// Sessions live in DB 1, OAuth state in DB 2, the cache uses DB 0.
const (
	sessionDB    = 1
	OAuthStateDB = 2
)

var ErrNoStore = errors.New("session store not initialized")

var sessionStore *session.Store

// StaffIdentity is what a signed-in session remembers about the staff member.
type StaffIdentity struct {
	UserID  uint
	Name    string
	Role    string
	IsAdmin bool
}

// NewSessionStore builds the cookie session store on the Redis instance the cache points at.
func NewSessionStore() *session.Store {
	sessionStore = session.New(session.Config{
		Storage:        NewRedisStorage(sessionDB),
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     time.Duration(env.GetEnvInt("SESSION_HOURS", 8)) * time.Hour,
		KeyLookup:      "cookie:session_id",
	})

	return sessionStore
}

// NewRedisStorage opens a fiber storage on database db of the cache Redis.
func NewRedisStorage(db int) *redis.Storage {
	host, port, password := redisTarget()
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: db,
		Reset:    false,
	})
}

func redisTarget() (string, int, string) {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnvInt("CACHE_PORT", 6379)
	password := env.GetEnv("CACHE_PASSWORD", "")

	client := cache.GetClient()
	if client == nil {
		return host, port, password
	}
	if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := client.Options().Password; p != "" {
		password = p
	}
	return host, port, password
}

// SetSessionStore installs a store, used by tests with the in-memory storage.
func SetSessionStore(store *session.Store) {
	sessionStore = store
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// Start rotates the session id and stores the staff identity.
func Start(c *fiber.Ctx, id StaffIdentity) error {
	if sessionStore == nil {
		return ErrNoStore
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, id.UserID)
	sess.Set(usercontext.KeyUsername, id.Name)
	sess.Set(usercontext.KeyRole, id.Role)
	sess.Set(usercontext.KeyIsAdmin, id.IsAdmin)
	return sess.Save()
}

// Load returns the staff identity of the request, ok is false for anonymous requests.
func Load(c *fiber.Ctx) (StaffIdentity, bool) {
	if sessionStore == nil {
		return StaffIdentity{}, false
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return StaffIdentity{}, false
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	if !ok || userID == 0 {
		return StaffIdentity{}, false
	}
	id := StaffIdentity{UserID: userID}
	id.Name, _ = sess.Get(usercontext.KeyUsername).(string)
	id.Role, _ = sess.Get(usercontext.KeyRole).(string)
	id.IsAdmin, _ = sess.Get(usercontext.KeyIsAdmin).(bool)
	return id, true
}

// End destroys the session of the request.
func End(c *fiber.Ctx) error {
	if sessionStore == nil {
		return ErrNoStore
	}
	sess, err := sessionStore.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
