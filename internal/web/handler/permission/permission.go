// Package permission serves the permission catalog and the effective
// permissions of the caller.
package permission

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/web/handler"
)

const (
	// Path is the catalog path.
	Path = handler.APIPath + "/permissions"
	// EffectivePath lists what the caller may do in one store.
	EffectivePath = handler.StorePath + "/permissions/effective"
	// AuthorizePath answers a single permission check for collaborating services.
	AuthorizePath = handler.StorePath + "/authorize"

	queryPermission = "permission"
	tagEffective    = "permission-effective"
	tagAuthorize    = "permission-authorize"
)

// Service is the permission handler service.
type Service struct {
	handler.Service
	authService *auth.Service
}

// Handler is the permission handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the permission routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return handler.ErrNilDependency
	}

	s.authService = authService

	app.Get(Path, auth.RequireAuthenticated(), s.Catalog)
	app.Get(EffectivePath, auth.RequireAuthenticated(), s.Effective)
	app.Get(AuthorizePath, s.Authorize)

	return nil
}

// Catalog returns the permission catalog grouped by category, optionally
// filtered by the search query.
func (s *Service) Catalog(c *fiber.Ctx) error {
	return c.JSON(auth.Categories(c.Query(handler.QuerySearch)))
}

// Effective returns the permissions the caller holds in the store, with
// manage wildcards expanded.
func (s *Service) Effective(c *fiber.Ctx) error {
	userID := auth.UserIDFromContext(c)
	storeID := c.Params(auth.ParamStoreID)

	p, err := s.authService.ResolvePrincipal(c.UserContext(), userID, storeID)
	if err != nil {
		return handler.RespondError(c, tagEffective, err)
	}

	_, owner := p.(auth.Owner)

	return c.JSON(fiber.Map{
		"storeId":     storeID,
		"owner":       owner,
		"permissions": auth.EffectivePermissions(p),
	})
}

// Authorize answers whether the caller holds the permission named by the
// permission query in the store: 200 when allowed, 401 or 403 otherwise.
// Services that own the guarded resources call it before mutating.
func (s *Service) Authorize(c *fiber.Ctx) error {
	required := c.Query(queryPermission)
	if !auth.IsValid(required) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": auth.ErrUnknownPermission.Error()})
	}

	d, err := s.authService.Authorize(c.UserContext(), auth.UserIDFromContext(c), c.Params(auth.ParamStoreID), required)
	if err != nil {
		return handler.RespondError(c, tagAuthorize, err)
	}

	if !d.Allowed {
		return handler.RespondError(c, tagAuthorize, d.Err())
	}

	return c.JSON(fiber.Map{"allowed": true, "permission": required})
}
