package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/FeeFox/app/controllers"
	"github.com/ManuelReschke/FeeFox/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Auth
	app.Post("/login", newLoginLimiter(), controllers.HandleAuthLogin)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
}

// LoginAttemptsPerMinute bounds password guesses per client address.
const LoginAttemptsPerMinute = 10

// newLoginLimiter keys on c.IP(), which honours forwarding headers only from
// the trusted proxies configured on the app.
func newLoginLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        LoginAttemptsPerMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "Too many login attempts, try again later",
			})
		},
	})
}
