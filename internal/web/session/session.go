// Package session stores authenticated users in the fiber session storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/shopkeep/shopkeep/internal/db/models"
)

// CookieName is the cookie carrying the session id.
const CookieName = "session"

const bearerPrefix = "Bearer "

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// ErrNotFound is returned when no session exists for the id.
var ErrNotFound = errors.New("session not found")

// Data represents the session data structure.
type Data struct {
	User      models.User
	CreatedAt time.Time
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session with the given ID.
func Delete(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// Init initializes the session store with the provided storage backend.
// A nil storage keeps sessions in process memory.
func Init(storage fiber.Storage, expiration time.Duration) {
	Store = session.New(session.Config{
		Storage:    storage,
		Expiration: expiration,
		KeyLookup:  "cookie:" + CookieName,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// IDFromRequest returns the session id of the request, taken from the
// session cookie or, for API clients, from an "Authorization: Bearer" header.
func IDFromRequest(c *fiber.Ctx) string {
	if id := c.Cookies(CookieName); id != "" {
		return id
	}

	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}

	return ""
}
