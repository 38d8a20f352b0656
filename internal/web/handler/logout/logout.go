// Package logout provides the HTTP handler that ends a session.
package logout

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/web/handler"
	"github.com/shopkeep/shopkeep/internal/web/session"
)

// Path is the path of the logout endpoint.
const Path = handler.APIPath + "/auth/logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
}

// Handler is the logout handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the logout route.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return handler.ErrNilDependency
	}

	app.Post(Path, s.Post)

	return nil
}

// Post deletes the session of the request and expires the cookie. Logging
// out without a session succeeds as well.
func (s *Service) Post(c *fiber.Ctx) error {
	if id := session.IDFromRequest(c); id != "" {
		if err := session.Delete(id); err != nil {
			log.Error().Err(err).Str("tag", "logout").Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     handler.RootPath,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})

	return c.SendStatus(fiber.StatusNoContent)
}
