package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ManuelReschke/FeeFox/app/controllers"
	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
	"github.com/ManuelReschke/FeeFox/internal/pkg/middleware"
	"github.com/ManuelReschke/FeeFox/internal/pkg/oauth"
	"github.com/ManuelReschke/FeeFox/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	if oauth.Enabled() {
		oauth.Setup()
	}

	// the console runs on its own origin and sends the session cookie
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		AllowCredentials: true,
	}))

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize staff user controller with repositories
	controllers.InitializeUserController()

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
