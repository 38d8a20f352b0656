package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/db/controller/role"
	"github.com/shopkeep/shopkeep/internal/db/controller/store"
)

// Messages of generic error bodies.
const (
	MsgBadRequest   = "Bad Request"
	MsgUnauthorized = "Unauthorized"
	MsgForbidden    = "Forbidden"
	MsgInternal     = "Internal Server Error"
)

// ErrInvalidID is returned when a numeric route parameter is missing or not positive.
var ErrInvalidID = errors.New("invalid id")

// clientErrors are domain errors whose message is safe to show to the caller.
var clientErrors = []struct { //nolint:gochecknoglobals
	err    error
	status int
}{
	{auth.ErrInvalidPassword, fiber.StatusUnauthorized},
	{auth.ErrUserAccountDisabled, fiber.StatusUnauthorized},
	{auth.ErrUserNameOrEmailExists, fiber.StatusConflict},
	{role.ErrRoleNotFound, fiber.StatusNotFound},
	{role.ErrUserNotFound, fiber.StatusNotFound},
	{store.ErrStoreNotFound, fiber.StatusNotFound},
	{role.ErrRoleInUse, fiber.StatusBadRequest},
	{role.ErrInvalidPermissionList, fiber.StatusBadRequest},
	{role.ErrRoleNameEmpty, fiber.StatusBadRequest},
	{role.ErrStoreIDEmpty, fiber.StatusBadRequest},
	{role.ErrRoleNameExists, fiber.StatusConflict},
	{store.ErrOwnerRemoval, fiber.StatusBadRequest},
	{store.ErrOwnerInvite, fiber.StatusBadRequest},
	{store.ErrNoRolesToAssign, fiber.StatusBadRequest},
	{ErrInvalidID, fiber.StatusBadRequest},
}

// StatusOf maps err to the HTTP status and the message sent to the client.
// Unknown errors are 500 with a generic message.
func StatusOf(err error) (int, string) {
	if errors.Is(err, auth.ErrUnauthenticated) {
		return fiber.StatusUnauthorized, MsgUnauthorized
	}

	if errors.Is(err, auth.ErrInsufficientPermission) {
		return fiber.StatusForbidden, MsgForbidden
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest, verrs.Error()
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) && ferr.Code < fiber.StatusInternalServerError {
		return ferr.Code, ferr.Message
	}

	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			return ce.status, ce.err.Error()
		}
	}

	return fiber.StatusInternalServerError, MsgInternal
}

// RespondError writes err as JSON body {"error": msg}. Server side failures
// are logged under tag.
func RespondError(c *fiber.Ctx, tag string, err error) error {
	status, msg := StatusOf(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("tag", tag).
			Str("user_id", auth.UserIDFromContext(c)).
			Str("store_id", c.Params(auth.ParamStoreID)).
			Msg("request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}

	return uint(id), nil
}
