package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// LocalsUserID is the fiber.Locals key carrying the authenticated user id.
	LocalsUserID = "user_id"
	// LocalsPrincipal is the fiber.Locals key carrying the resolved Principal
	// once a permission check passed.
	LocalsPrincipal = "principal"
	// ParamStoreID is the route parameter naming the store of a request.
	ParamStoreID = "storeId"

	msgUnauthorized = "Unauthorized"
	msgForbidden    = "Forbidden"
	msgInternal     = "Internal Server Error"
)

// UserIDFromContext returns the authenticated user id, or an empty string.
func UserIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsUserID).(string)
	return id
}

// PrincipalFromContext returns the principal stored by a passed permission check.
func PrincipalFromContext(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(LocalsPrincipal).(Principal)
	return p, ok
}

// RequirePermission creates Fiber middleware that requires a specific
// permission in the store named by the :storeId route parameter. The next
// handler only runs when the check allows the request.
//
// Registering a route with an identifier that is not in the catalog panics,
// so a typo can never silently lock a route.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	mustKnow(permission)

	return func(c *fiber.Ctx) error {
		userID := UserIDFromContext(c)
		storeID := c.Params(ParamStoreID)

		d, p, err := authService.decide(c.UserContext(), userID, storeID, permission)
		if err != nil {
			log.Error().Err(err).Str("tag", "authorize").
				Str("user_id", userID).Str("store_id", storeID).Str("permission", permission).
				Msg("failed to resolve principal")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
		}

		switch d.Status {
		case fiber.StatusUnauthorized:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		case fiber.StatusForbidden:
			log.Warn().Str("user_id", userID).Str("store_id", storeID).Str("permission", permission).
				Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgForbidden})
		}

		c.Locals(LocalsPrincipal, p)

		return c.Next()
	}
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	for _, perm := range permissions {
		mustKnow(perm)
	}

	return func(c *fiber.Ctx) error {
		userID := UserIDFromContext(c)
		storeID := c.Params(ParamStoreID)

		if userID == "" {
			decisions.WithLabelValues(OutcomeUnauthenticated).Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		allowed, err := authService.HasAnyPermission(c.UserContext(), userID, storeID, permissions)
		if err != nil {
			decisions.WithLabelValues(OutcomeError).Inc()
			log.Error().Err(err).Str("tag", "authorize").
				Str("user_id", userID).Str("store_id", storeID).Strs("permissions", permissions).
				Msg("failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": msgInternal})
		}

		if !allowed {
			decisions.WithLabelValues(OutcomeDenied).Inc()
			log.Warn().Str("user_id", userID).Str("store_id", storeID).Strs("permissions", permissions).
				Msg("user lacks required permissions")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msgForbidden})
		}

		decisions.WithLabelValues(OutcomeAllowed).Inc()

		return c.Next()
	}
}

// RequireAuthenticated rejects requests without a session user with 401.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserIDFromContext(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msgUnauthorized})
		}

		return c.Next()
	}
}

// RequireRoute guards a resource route group with the permission of the route table.
func RequireRoute(authService *Service, resource string) fiber.Handler {
	perm, ok := RouteRequirement(resource)
	if !ok {
		panic(fmt.Sprintf("no route requirement for resource %q", resource))
	}

	return RequirePermission(authService, perm)
}

func mustKnow(permission string) {
	if !IsValid(permission) {
		panic(fmt.Errorf("%w: %q", ErrUnknownPermission, permission))
	}
}
