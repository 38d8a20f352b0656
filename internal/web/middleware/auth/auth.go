package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/web/session"
)

// LocalsCurrentUser is the fiber.Locals key carrying the session user.
const LocalsCurrentUser = "CurrentUser"

// New returns a Fiber middleware that attaches the session user to the
// request. The user is loaded from users on every request, so a deactivated
// or deleted account loses access immediately and its session is dropped.
func New(users *auth.LocalProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := session.IDFromRequest(c)
		if sessionID == "" {
			return c.Next()
		}

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil {
			log.Debug().Err(err).Msg("no valid session for request")
			return c.Next()
		}

		if sessData.User.ID == "" {
			return c.Next()
		}

		user, err := users.GetUserByID(c.UserContext(), sessData.User.ID)
		if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
			return fmt.Errorf("failed to load session user: %w", err)
		}

		if user == nil || !user.Active {
			if err = session.Delete(sessionID); err != nil {
				log.Error().Err(err).Str("user_id", sessData.User.ID).Msg("failed to drop session")
			}

			log.Info().Str("user_id", sessData.User.ID).Msg("session of inactive user dropped")

			return c.Next()
		}

		c.Locals(auth.LocalsUserID, user.ID)
		c.Locals(LocalsCurrentUser, *user)

		return c.Next()
	}
}
