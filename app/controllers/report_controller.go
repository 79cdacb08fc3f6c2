package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/export"
	"github.com/ManuelReschke/FeeFox/internal/pkg/statistics"
)

func (bc *BillingController) monthParam(c *fiber.Ctx) string {
	return c.Query("month", bc.svc.CurrentMonthYear())
}

// HandleMonthlyReport returns the aggregate report of ?month=YYYY-MM
func (bc *BillingController) HandleMonthlyReport(c *fiber.Ctx) error {
	report, _, err := bc.svc.MonthlyReport(c.UserContext(), bc.monthParam(c))
	if err != nil {
		return handleServiceError(c, "Reports", err)
	}
	return c.JSON(report)
}

// HandleDashboard returns the cached dashboard counters of the current month
func (bc *BillingController) HandleDashboard(c *fiber.Ctx) error {
	counts, err := statistics.GetDashboard(c.UserContext(), bc.svc)
	if err != nil {
		return handleServiceError(c, "Reports", err)
	}
	return c.JSON(counts)
}

// renderReport builds the report file of month in the requested format (csv or xlsx).
func (bc *BillingController) renderReport(c *fiber.Ctx, month, format string) ([]byte, string, error) {
	report, records, err := bc.svc.MonthlyReport(c.UserContext(), month)
	if err != nil {
		return nil, "", err
	}

	profiles := make(map[uint]models.BillingProfile, len(records))
	all, err := bc.svc.ListProfiles(c.UserContext(), "", 0, 0)
	if err != nil {
		return nil, "", err
	}
	for _, p := range all {
		profiles[p.ID] = p
	}

	var data []byte
	if format == "xlsx" {
		data, err = export.MonthlyReportXLSX(*report, records, profiles)
	} else {
		format = "csv"
		data, err = export.MonthlyReportCSV(*report, records, profiles)
	}
	return data, export.FileName(month, format), err
}

// HandleDownloadReport streams the report file of ?month= as an attachment
func (bc *BillingController) HandleDownloadReport(c *fiber.Ctx) error {
	month := bc.monthParam(c)
	data, filename, err := bc.renderReport(c, month, c.Query("format", "csv"))
	if err != nil {
		return handleServiceError(c, "Reports", err)
	}
	c.Attachment(filename)
	return c.Send(data)
}

// HandleExportReport uploads the report file of ?month= to the S3 bucket. Admin only.
func (bc *BillingController) HandleExportReport(c *fiber.Ctx) error {
	if bc.uploader == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, ErrCodeUnavailable, "S3 export is disabled")
	}
	month := bc.monthParam(c)
	if _, err := billing.ParseMonthYear(month); err != nil {
		return handleServiceError(c, "Reports", err)
	}

	data, filename, err := bc.renderReport(c, month, c.Query("format", "csv"))
	if err != nil {
		return handleServiceError(c, "Reports", err)
	}
	res, err := bc.uploader.UploadReport(c.UserContext(), month, filename, data)
	if err != nil {
		return handleServiceError(c, "Reports", err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
