// Package store serves the stores of the caller.
package store

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	storecontroller "github.com/shopkeep/shopkeep/internal/db/controller/store"
	"github.com/shopkeep/shopkeep/internal/web/handler"
)

const (
	// Path lists the stores owned by the caller.
	Path = handler.APIPath + "/stores"

	tagList = "store-list"
)

// Service is the store handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the store handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the store routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return handler.ErrNilDependency
	}

	s.db = db

	app.Get(Path, auth.RequireAuthenticated(), s.List)

	return nil
}

// List returns the stores owned by the caller, ordered by name.
func (s *Service) List(c *fiber.Ctx) error {
	stores, err := storecontroller.ListOwned(c.UserContext(), s.db, auth.UserIDFromContext(c))
	if err != nil {
		return handler.RespondError(c, tagList, err)
	}

	return c.JSON(stores)
}
