package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/FeeFox/app/controllers"
	"github.com/ManuelReschke/FeeFox/app/repository"
	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
	"github.com/ManuelReschke/FeeFox/internal/pkg/middleware"
	"github.com/ManuelReschke/FeeFox/internal/pkg/s3export"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	svc := billing.NewService(repository.GetGlobalFactory().GetBillingRepository(),
		billing.WithPaidRule(billing.ParsePaidRule(env.GetEnv("BILLING_PAID_RULE", ""))),
	)
	controllers.InitializeBillingController(svc, newReportUploader())

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", 120),
		Expiration: 1 * time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	v1.Get("/me", middleware.RequireAuth, controllers.HandleMe)

	registerStaffRoutes(v1)
	registerAdminRoutes(v1)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// newReportUploader returns nil when S3 export is disabled or unreachable.
func newReportUploader() controllers.ReportUploader {
	cfg, err := s3export.LoadConfig()
	if err != nil {
		log.Errorf("[Router] S3 export misconfigured: %v", err)
		return nil
	}
	if !cfg.IsEnabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	client, err := s3export.NewClient(ctx, cfg)
	if err != nil {
		log.Errorf("[Router] S3 export disabled: %v", err)
		return nil
	}
	return client
}
