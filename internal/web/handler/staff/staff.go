// Package staff provides the handlers to list the staff of a store, to
// invite staff users and to remove them again.
package staff

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/db/controller/store"
	"github.com/shopkeep/shopkeep/internal/web/handler"
)

const (
	// Path is the base path for staff management.
	Path = handler.StorePath + "/staff"

	tagList   = "staff-list"
	tagInvite = "staff-invite"
	tagRemove = "staff-remove"
)

type inviteInput struct {
	UserID  string `json:"userId"  validate:"required,max=36"`
	RoleIDs []uint `json:"roleIds" validate:"dive,gt=0"`
}

// Service is the staff handler service.
type Service struct {
	handler.Service
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the staff handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the staff routes. Changes need staff:manage; the listing is
// also open to role viewers, who need it to see who holds a role.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return handler.ErrNilDependency
	}

	s.db = db
	s.authService = authService
	s.validator = validator.New()

	canManage := auth.RequirePermission(authService, auth.PermStaffManage)
	canList := auth.RequireAnyPermission(authService, auth.PermStaffManage, auth.PermRolesView)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, canList, s.List)
		router.Post(handler.RootPath, canManage, s.Invite)
		router.Delete("/:userId", canManage, s.Remove)
	})

	return nil
}

// List returns the staff users of the store with their role ids.
func (s *Service) List(c *fiber.Ctx) error {
	members, err := store.Members(c.UserContext(), s.db, c.Params(auth.ParamStoreID))
	if err != nil {
		return handler.RespondError(c, tagList, err)
	}

	return c.JSON(members)
}

// Invite assigns roles to a user of the store. Without roleIds the
// store's default roles are assigned. Naming roles explicitly hands out
// their permissions, so it additionally needs roles:manage.
func (s *Service) Invite(c *fiber.Ctx) error {
	in := new(inviteInput)
	if err := c.BodyParser(in); err != nil {
		return handler.RespondError(c, tagInvite, fiber.NewError(fiber.StatusBadRequest, handler.MsgBadRequest))
	}

	if err := s.validator.Struct(in); err != nil {
		return handler.RespondError(c, tagInvite, err)
	}

	storeID := c.Params(auth.ParamStoreID)

	if len(in.RoleIDs) > 0 {
		allowed, err := s.authService.HasPermission(c.UserContext(), auth.UserIDFromContext(c), storeID, auth.PermRolesManage)
		if err != nil {
			return handler.RespondError(c, tagInvite, err)
		}

		if !allowed {
			log.Warn().Str("user_id", auth.UserIDFromContext(c)).Str("store_id", storeID).
				Str("permission", auth.PermRolesManage).Msg("user lacks permission to invite with explicit roles")

			return handler.RespondError(c, tagInvite, auth.ErrInsufficientPermission)
		}
	}

	roleIDs, err := store.Invite(c.UserContext(), s.db, storeID, in.UserID, in.RoleIDs)
	if err != nil {
		return handler.RespondError(c, tagInvite, err)
	}

	log.Info().Str("user_id", auth.UserIDFromContext(c)).Str("store_id", storeID).
		Str("staff_id", in.UserID).Msg("staff invited")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"storeId": storeID,
		"userId":  in.UserID,
		"roleIds": roleIDs,
	})
}

// Remove deletes every role assignment of the user in the store.
func (s *Service) Remove(c *fiber.Ctx) error {
	storeID := c.Params(auth.ParamStoreID)
	userID := c.Params("userId")

	removed, err := store.RemoveMember(c.UserContext(), s.db, storeID, userID)
	if err != nil {
		return handler.RespondError(c, tagRemove, err)
	}

	log.Info().Str("user_id", auth.UserIDFromContext(c)).Str("store_id", storeID).
		Str("staff_id", userID).Int64("assignments", removed).Msg("staff removed")

	return c.SendStatus(fiber.StatusNoContent)
}
