package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/db/controller/role"
	"github.com/shopkeep/shopkeep/internal/db/controller/store"
)

func TestStatusOf(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}

	verr := validator.New().Struct(input{})

	testCases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "insufficient permission", err: fmt.Errorf("check: %w", auth.ErrInsufficientPermission), status: fiber.StatusForbidden, message: MsgForbidden},
		{name: "unauthenticated", err: auth.ErrUnauthenticated, status: fiber.StatusUnauthorized, message: MsgUnauthorized},
		{name: "role in use", err: role.ErrRoleInUse, status: fiber.StatusBadRequest, message: role.ErrRoleInUse.Error()},
		{name: "role not found", err: role.ErrRoleNotFound, status: fiber.StatusNotFound, message: role.ErrRoleNotFound.Error()},
		{name: "name exists", err: role.ErrRoleNameExists, status: fiber.StatusConflict, message: role.ErrRoleNameExists.Error()},
		{name: "owner removal", err: store.ErrOwnerRemoval, status: fiber.StatusBadRequest, message: store.ErrOwnerRemoval.Error()},
		{name: "validation", err: verr, status: fiber.StatusBadRequest, message: verr.Error()},
		{name: "fiber client error", err: fiber.NewError(fiber.StatusTeapot, "short and stout"), status: fiber.StatusTeapot, message: "short and stout"},
		{name: "fiber server error", err: fiber.NewError(fiber.StatusBadGateway, "upstream host"), status: fiber.StatusInternalServerError, message: MsgInternal},
		{name: "unknown", err: errors.New("dial tcp 10.0.0.1:5432: connection refused"), status: fiber.StatusInternalServerError, message: MsgInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := StatusOf(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.message, msg)
		})
	}
}
