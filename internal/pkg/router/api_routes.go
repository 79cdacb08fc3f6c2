package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/FeeFox/app/controllers"
	"github.com/ManuelReschke/FeeFox/internal/pkg/middleware"
)

func registerStaffRoutes(group fiber.Router) {
	bc := controllers.GetBillingController()

	group.Get("/profiles", middleware.RequireAuth, bc.HandleListProfiles)
	group.Post("/profiles", middleware.RequireAuth, bc.HandleCreateProfile)
	group.Get("/profiles/:id", middleware.RequireAuth, bc.HandleGetProfile)
	group.Put("/profiles/:id", middleware.RequireAuth, bc.HandleUpdateProfile)
	group.Get("/profiles/:id/payments", middleware.RequireAuth, bc.HandleListPayments)
	group.Post("/profiles/:id/payments", middleware.RequireAuth, bc.HandleRecordPayment)
	group.Get("/profiles/:id/monthly", middleware.RequireAuth, bc.HandleListMonthly)
	group.Post("/profiles/:id/monthly", middleware.RequireAuth, bc.HandleGenerateMonthly)

	group.Get("/reports/monthly", middleware.RequireAuth, bc.HandleMonthlyReport)
	group.Get("/reports/monthly/download", middleware.RequireAuth, bc.HandleDownloadReport)
	group.Get("/reports/dashboard", middleware.RequireAuth, bc.HandleDashboard)
}

func registerAdminRoutes(group fiber.Router) {
	bc := controllers.GetBillingController()
	uc := controllers.GetUserController()

	// Staff users
	group.Get("/admin/users", middleware.RequireAdmin, uc.HandleList)
	group.Post("/admin/users", middleware.RequireAdmin, uc.HandleCreate)
	group.Get("/admin/users/:id", middleware.RequireAdmin, uc.HandleGet)
	group.Put("/admin/users/:id", middleware.RequireAdmin, uc.HandleUpdate)
	group.Delete("/admin/users/:id", middleware.RequireAdmin, uc.HandleDelete)

	// Billing maintenance
	group.Delete("/profiles/:id", middleware.RequireAdmin, bc.HandleDeleteProfile)
	group.Post("/monthly/generate", middleware.RequireAdmin, bc.HandleGenerateAllMonthly)
	group.Post("/import", middleware.RequireAdmin, bc.HandleImport)
	group.Post("/reports/monthly/export", middleware.RequireAdmin, bc.HandleExportReport)
}
