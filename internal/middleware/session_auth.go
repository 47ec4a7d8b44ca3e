package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/session"
)

// LocalsAccountID is the fiber.Ctx locals key holding the authenticated account id.
const LocalsAccountID = "account_id"

// LocalsSessionToken is the fiber.Ctx locals key holding the session token.
const LocalsSessionToken = "session_token"

// SessionAuth validates the opaque bearer session token against the session
// store and extends the sliding expiry on every successful check.
func SessionAuth(sessions session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		sess, err := sessions.Validate(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "session expired")
		}
		if err := sessions.Touch(c.UserContext(), token); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "session expired")
		}

		c.Locals(LocalsAccountID, sess.AccountID)
		c.Locals(LocalsSessionToken, token)
		return c.Next()
	}
}
