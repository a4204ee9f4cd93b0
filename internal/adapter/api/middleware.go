package api

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderSessionID          = "X-Session-Id"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"

	localsIdentity = "identity"
)

// IdentityMiddleware resolves the caller once per request and stores it in the locals.
func IdentityMiddleware(resolver *usecase.IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization), c.Get(HeaderSessionID))
		c.Locals(localsIdentity, id)
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) entity.Identity {
	if id, ok := c.Locals(localsIdentity).(entity.Identity); ok {
		return id
	}
	return entity.AnonymousIdentity("")
}

// AdmissionMiddleware spends one quota unit for anonymous callers. Anonymous responses always
// carry the remaining count and reset time, including allowed ones.
func AdmissionMiddleware(gate *usecase.AdmissionGate) fiber.Handler {
	log := slog.Default().With("component", "admission")
	return func(c *fiber.Ctx) error {
		id := identityFrom(c)
		res, err := gate.Admit(c.UserContext(), id, 0)
		if err != nil {
			log.Error("admission failed", "identity", id.String(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}

		if !res.Bypassed {
			resetAt := res.ResetAt.UTC().Format(time.RFC3339)
			c.Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
			c.Set(HeaderRateLimitReset, resetAt)

			if !res.Proceed {
				log.Info("free limit reached", "session", id.QuotaKey(), "reset_at", resetAt)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": fmt.Sprintf("You've reached the free limit (%d per day). Sign up to continue!", gate.Limit()),
					"resetAt": resetAt,
				})
			}
		}
		return c.Next()
	}
}
