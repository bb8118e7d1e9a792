package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/utils"
)

const (
	userContextKey    = "currentUserID"
	adminContextKey   = "currentUserIsAdmin"
	sessionContextKey = "currentSessionID"
)

// SessionHeader carries the guest session identifier.
const SessionHeader = "X-Session-ID"

// RequireAuth validates JWT tokens and loads the authenticated user ID into
// context. Requests without a valid token are rejected.
func RequireAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, admin, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userContextKey, userID)
		c.Locals(adminContextKey, admin)
		return c.Next()
	}
}

// RequireAdmin rejects authenticated requests whose token lacks the admin
// claim. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if admin, ok := c.Locals(adminContextKey).(bool); !ok || !admin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// ResolveIdentity accepts either a bearer token or a guest session header and
// records whatever credentials the request carried. Services enforce that
// exactly one is present; a supplied but invalid token is still rejected here.
func ResolveIdentity(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
			}
			userID, admin, err := utils.ParseToken(cfg.JWTSecret, parts[1])
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			c.Locals(userContextKey, userID)
			c.Locals(adminContextKey, admin)
		}

		if sessionID := c.Get(SessionHeader); sessionID != "" {
			c.Locals(sessionContextKey, sessionID)
		}

		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// CurrentIdentity assembles the request credential for the service layer. It
// carries whatever the request presented; exclusivity is a service concern.
func CurrentIdentity(c *fiber.Ctx) services.Identity {
	var identity services.Identity
	if userID, ok := GetCurrentUserID(c); ok {
		identity.UserID = &userID
	}
	if sessionID, ok := c.Locals(sessionContextKey).(string); ok {
		identity.SessionID = sessionID
	}
	return identity
}
