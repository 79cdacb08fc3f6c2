package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	flog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/FeeFox/app/repository"
	"github.com/ManuelReschke/FeeFox/internal/pkg/cache"
	"github.com/ManuelReschke/FeeFox/internal/pkg/database"
	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
	"github.com/ManuelReschke/FeeFox/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// findBasePath locates the project root holding public/docs.
func findBasePath() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/feefox to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			return path
		}
	}
	panic("Could not find project root directory")
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	basePath := findBasePath()

	app := fiber.New(newFiberConfig())

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	if users, ok := metricsUsers(); ok {
		app.Get("/metrics", basicauth.New(basicauth.Config{Users: users}), monitor.New())
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}

func newFiberConfig() fiber.Config {
	cfg := fiber.Config{
		AppName:   "FeeFox",
		BodyLimit: 20 * 1024 * 1024, // import files
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   "error",
				"message": err.Error(),
			})
		},
	}

	// c.IP() reads the proxy header only when the peer is a trusted proxy
	if proxies := splitList(env.GetEnv("TRUSTED_PROXIES", "")); len(proxies) > 0 {
		cfg.ProxyHeader = env.GetEnv("PROXY_HEADER", fiber.HeaderXForwardedFor)
		cfg.EnableTrustedProxyCheck = true
		cfg.TrustedProxies = proxies
	}
	return cfg
}

// metricsUsers returns the basic auth users of /metrics. Outside dev the
// monitor stays unmounted until METRICS_PASSWORD is set.
func metricsUsers() (map[string]string, bool) {
	user := env.GetEnv("METRICS_USER", "admin")
	password := env.GetEnv("METRICS_PASSWORD", "")
	if password == "" {
		if !env.IsDev() {
			flog.Error("[Metrics] METRICS_PASSWORD is not set, /metrics is disabled")
			return nil, false
		}
		password = "change-me"
	}
	return map[string]string{user: password}, true
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
