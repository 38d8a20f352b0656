// Package role provides the JSON handlers for store roles and role assignments.
package role

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	rolecontroller "github.com/shopkeep/shopkeep/internal/db/controller/role"
	"github.com/shopkeep/shopkeep/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.StorePath + "/roles"

	paramRoleID = "roleId"
	paramUserID = "userId"

	tagList     = "role-list"
	tagGet      = "role-get"
	tagCreate   = "role-create"
	tagPatch    = "role-patch"
	tagDelete   = "role-delete"
	tagAssign   = "role-assign"
	tagUnassign = "role-unassign"
)

// Service is the role handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the role handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the role routes. Reads need roles:view, everything that
// changes a role or its assignments needs roles:manage.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return handler.ErrNilDependency
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.validator = validator.New()

	canView := auth.RequirePermission(authService, auth.PermRolesView)
	canManage := auth.RequirePermission(authService, auth.PermRolesManage)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, canView, s.List)
		router.Post(handler.RootPath, canManage, s.Create)
		router.Get("/:roleId", canView, s.Get)
		router.Patch("/:roleId", canManage, s.Patch)
		router.Delete("/:roleId", canManage, s.Delete)
		router.Put("/:roleId/assignments/:userId", canManage, s.Assign)
		router.Delete("/:roleId/assignments/:userId", canManage, s.Unassign)
	})

	return nil
}

// List returns the roles of the store.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := rolecontroller.List(c.UserContext(), s.db, c.Params(auth.ParamStoreID), c.Query(handler.QuerySearch))
	if err != nil {
		return handler.RespondError(c, tagList, err)
	}

	return c.JSON(roles)
}

// Get returns one role with its permission names.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, paramRoleID)
	if err != nil {
		return handler.RespondError(c, tagGet, err)
	}

	r, err := rolecontroller.Get(c.UserContext(), s.db, c.Params(auth.ParamStoreID), id)
	if err != nil {
		return handler.RespondError(c, tagGet, err)
	}

	return c.JSON(r)
}

// Create stores a new role. Permissions that are not in the catalog are dropped.
func (s *Service) Create(c *fiber.Ctx) error {
	in := new(createInput)
	if err := c.BodyParser(in); err != nil {
		return handler.RespondError(c, tagCreate, fiber.NewError(fiber.StatusBadRequest, handler.MsgBadRequest))
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RespondError(c, tagCreate, err)
	}

	r, err := rolecontroller.Create(c.UserContext(), s.db, c.Params(auth.ParamStoreID), rolecontroller.Input{
		Name:        in.Name,
		Description: in.Description,
		Permissions: in.Permissions,
		IsDefault:   in.IsDefault,
	})
	if err != nil {
		return handler.RespondError(c, tagCreate, err)
	}

	log.Info().Str("user_id", auth.UserIDFromContext(c)).Str("store_id", r.StoreID).
		Uint("role_id", r.ID).Strs("permissions", r.Permissions).Msg("role created")

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Patch replaces the permission set of a role and optionally renames it.
// The permission list is a full replacement, never a merge.
func (s *Service) Patch(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, paramRoleID)
	if err != nil {
		return handler.RespondError(c, tagPatch, err)
	}

	in := new(patchInput)
	if err = c.BodyParser(in); err != nil {
		return handler.RespondError(c, tagPatch, fiber.NewError(fiber.StatusBadRequest, handler.MsgBadRequest))
	}

	if err = s.validator.Struct(in); err != nil {
		return handler.RespondError(c, tagPatch, err)
	}

	if len(in.Permissions) == 0 {
		return handler.RespondError(c, tagPatch, rolecontroller.ErrInvalidPermissionList)
	}

	r, err := rolecontroller.ReplacePermissions(
		c.UserContext(), s.db, c.Params(auth.ParamStoreID), id, in.Permissions, in.Name, in.Description,
	)
	if err != nil {
		return handler.RespondError(c, tagPatch, err)
	}

	log.Info().Str("user_id", auth.UserIDFromContext(c)).Str("store_id", r.StoreID).
		Uint("role_id", r.ID).Strs("permissions", r.Permissions).Msg("role permissions replaced")

	return c.JSON(r)
}

// Delete removes a role that is not assigned to anybody.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, paramRoleID)
	if err != nil {
		return handler.RespondError(c, tagDelete, err)
	}

	storeID := c.Params(auth.ParamStoreID)

	if err = rolecontroller.Delete(c.UserContext(), s.db, storeID, id); err != nil {
		return handler.RespondError(c, tagDelete, err)
	}

	log.Info().Str("user_id", auth.UserIDFromContext(c)).Str("store_id", storeID).
		Uint("role_id", id).Msg("role deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// Assign grants the role to a user of the store.
func (s *Service) Assign(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, paramRoleID)
	if err != nil {
		return handler.RespondError(c, tagAssign, err)
	}

	storeID := c.Params(auth.ParamStoreID)
	userID := c.Params(paramUserID)

	if err = rolecontroller.Assign(c.UserContext(), s.db, storeID, userID, id); err != nil {
		return handler.RespondError(c, tagAssign, err)
	}

	return s.assignments(c, tagAssign, storeID, userID)
}

// Unassign revokes the role from a user of the store.
func (s *Service) Unassign(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, paramRoleID)
	if err != nil {
		return handler.RespondError(c, tagUnassign, err)
	}

	storeID := c.Params(auth.ParamStoreID)
	userID := c.Params(paramUserID)

	if err = rolecontroller.Unassign(c.UserContext(), s.db, storeID, userID, id); err != nil {
		return handler.RespondError(c, tagUnassign, err)
	}

	return s.assignments(c, tagUnassign, storeID, userID)
}

func (s *Service) assignments(c *fiber.Ctx, tag, storeID, userID string) error {
	out, err := rolecontroller.Assignments(c.UserContext(), s.db, storeID, userID)
	if err != nil {
		return handler.RespondError(c, tag, err)
	}

	return c.JSON(fiber.Map{"userId": userID, "storeId": storeID, "assignments": out})
}
