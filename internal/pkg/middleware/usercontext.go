package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/FeeFox/internal/pkg/session"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

// UserContextMiddleware resolves the staff identity of the session for every request
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth keeps its own session store on /auth/*, skip ours to avoid collisions
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	staff, ok := session.Load(c)
	if !ok {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     staff.UserID,
		Username:   staff.Name,
		Role:       staff.Role,
		IsLoggedIn: true,
		IsAdmin:    staff.IsAdmin,
	})
	c.Locals(usercontext.KeyUserID, staff.UserID)
	c.Locals(usercontext.KeyUsername, staff.Name)

	return c.Next()
}
