// Package resource mounts the guarded admin route groups of resources that
// are owned by other services (products, orders, customers, ...).
//
// Every group is protected by the permission of the route table. Requests
// that pass are forwarded to the configured upstream together with the
// acting user and store; groups without an upstream answer 501. The session
// credentials of the caller never leave this service.
package resource

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/web/handler"
	"github.com/shopkeep/shopkeep/internal/web/session"
)

const (
	// HeaderUserID carries the acting user to the upstream.
	HeaderUserID = "X-Shopkeep-User"
	// HeaderStoreID carries the store to the upstream.
	HeaderStoreID = "X-Shopkeep-Store"

	// roles has its own handler.
	rolesResource = "roles"
)

// Service is the resource handler service.
type Service struct {
	handler.Service
	upstreams map[string]string
}

// Handler is the resource handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init mounts one guarded group per resource of the route table.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return handler.ErrNilDependency
	}

	s.upstreams = make(map[string]string, len(cfg.Webserver.Upstreams))
	for name, base := range cfg.Webserver.Upstreams {
		s.upstreams[name] = strings.TrimRight(base, "/")
	}

	for _, name := range auth.GuardedResources() {
		if name == rolesResource {
			continue
		}

		group := app.Group(handler.StorePath+"/"+name, auth.RequireRoute(authService, name))
		group.All("/*", s.forward(name))
	}

	return nil
}

func (s *Service) forward(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base, ok := s.upstreams[name]
		if !ok || base == "" {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "Not Implemented"})
		}

		c.Request().Header.Del(fiber.HeaderAuthorization)
		c.Request().Header.DelCookie(session.CookieName)
		c.Request().Header.Set(HeaderUserID, auth.UserIDFromContext(c))
		c.Request().Header.Set(HeaderStoreID, c.Params(auth.ParamStoreID))

		if err := proxy.Do(c, base+c.OriginalURL()); err != nil {
			log.Error().Err(err).Str("tag", "resource-forward").Str("resource", name).
				Str("upstream", base).Msg("failed to forward request")

			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Bad Gateway"})
		}

		return nil
	}
}
