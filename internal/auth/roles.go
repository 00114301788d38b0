package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-mts/mts/internal/domain"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if !user.HasRole(allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := CurrentUser(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireSelfParam allows the request only when the route parameter names the caller.
func RequireSelfParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(c.Params(param), 10, 64)
		if err != nil || id <= 0 {
			return apperrors.NewInvalidField(param, "must be a positive integer")
		}
		if id != user.ID {
			return apperrors.NewForbidden("access limited to own resources")
		}
		return c.Next()
	}
}
