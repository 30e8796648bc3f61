package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-shop/internal/domain"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

// RequireCustomer ensures a customer is authenticated. The message is
// shown to shoppers as is.
func RequireCustomer(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.SubjectType != domain.SubjectTypeCustomer || principal.Customer == nil {
			return apperrors.NewUnauthorized(message)
		}
		return c.Next()
	}
}
