package controllers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/s3export"
	"github.com/ManuelReschke/FeeFox/internal/pkg/statistics"
)

// ReportUploader stores rendered reports, normally *s3export.Client.
type ReportUploader interface {
	UploadReport(ctx context.Context, monthYear, filename string, body []byte) (*s3export.UploadResult, error)
}

// BillingController serves profiles, payments, monthly records, imports and reports
type BillingController struct {
	svc      *billing.Service
	uploader ReportUploader
	// onChange is called with the affected month after every write
	onChange func(monthYear string)
}

// NewBillingController creates a billing controller. uploader may be nil when
// S3 export is disabled.
func NewBillingController(svc *billing.Service, uploader ReportUploader) *BillingController {
	return &BillingController{
		svc:      svc,
		uploader: uploader,
		onChange: statistics.Invalidate,
	}
}

var billingController *BillingController

// InitializeBillingController installs the global billing controller
func InitializeBillingController(svc *billing.Service, uploader ReportUploader) {
	billingController = NewBillingController(svc, uploader)
}

// GetBillingController returns the global billing controller instance
func GetBillingController() *BillingController {
	if billingController == nil {
		panic("billing controller not initialized")
	}
	return billingController
}

func (bc *BillingController) changed() {
	if bc.onChange != nil {
		bc.onChange(bc.svc.CurrentMonthYear())
	}
}

type profileRequest struct {
	ExternalID string          `json:"external_id" validate:"max=191"`
	Name       string          `json:"name" validate:"required,max=150"`
	Address    string          `json:"address" validate:"max=255"`
	Phone      string          `json:"phone" validate:"max=50"`
	Package    string          `json:"package" validate:"max=100"`
	MonthlyFee decimal.Decimal `json:"monthly_fee"`
	Balance    decimal.Decimal `json:"balance"`
	Advance    decimal.Decimal `json:"advance"`
	Profit     decimal.Decimal `json:"profit"`
}

func (r profileRequest) toModel() models.BillingProfile {
	return models.BillingProfile{
		ExternalID: strings.TrimSpace(r.ExternalID),
		Name:       r.Name,
		Address:    r.Address,
		Phone:      r.Phone,
		Package:    r.Package,
		MonthlyFee: r.MonthlyFee,
		Balance:    r.Balance,
		Advance:    r.Advance,
		Profit:     r.Profit,
	}
}

type paymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required"`
	PayerName string          `json:"payer_name" validate:"required,max=150"`
}

// HandleListProfiles lists profiles, filtered by ?q= and paginated
func (bc *BillingController) HandleListProfiles(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	profiles, err := bc.svc.ListProfiles(c.UserContext(), c.Query("q"), offset, limit)
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	if profiles == nil {
		profiles = []models.BillingProfile{}
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}

func (bc *BillingController) HandleGetProfile(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	p, err := bc.svc.GetProfile(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	return c.JSON(p)
}

func (bc *BillingController) HandleCreateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	p := req.toModel()
	if p.ExternalID == "" {
		p.ExternalID = uuid.NewString()
	}
	if err := bc.svc.CreateProfile(c.UserContext(), &p); err != nil {
		return handleServiceError(c, "Billing", err)
	}
	bc.changed()
	return c.Status(fiber.StatusCreated).JSON(p)
}

// HandleUpdateProfile changes descriptive fields and the fee. Balance is ignored.
func (bc *BillingController) HandleUpdateProfile(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	p, err := bc.svc.UpdateProfile(c.UserContext(), id, req.toModel())
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	bc.changed()
	return c.JSON(p)
}

// HandleDeleteProfile removes the profile and its monthly records. Admin only.
func (bc *BillingController) HandleDeleteProfile(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	removed, err := bc.svc.DeleteProfile(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	bc.changed()
	return c.JSON(fiber.Map{"deleted": id, "monthly_records_deleted": removed})
}

func (bc *BillingController) HandleListPayments(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	payments, err := bc.svc.ListPayments(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	if payments == nil {
		payments = []models.PaymentLedgerEntry{}
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// HandleRecordPayment collects a payment on behalf of the logged-in staff member
func (bc *BillingController) HandleRecordPayment(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	entry, err := bc.svc.RecordPayment(c.UserContext(), actorFromContext(c), billing.PaymentInput{
		ProfileID: id,
		Amount:    req.Amount,
		Method:    req.Method,
		PayerName: req.PayerName,
	})
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	bc.changed()
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (bc *BillingController) HandleListMonthly(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	records, err := bc.svc.ListMonthlyRecords(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	if records == nil {
		records = []models.MonthlyBillingRecord{}
	}
	return c.JSON(fiber.Map{"records": records})
}

// HandleGenerateMonthly creates the current month's record of one profile.
// 201 when created, 200 with the existing record otherwise.
func (bc *BillingController) HandleGenerateMonthly(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid profile id")
	}
	rec, created, err := bc.svc.GenerateMonthlyEntryByID(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
		bc.changed()
	}
	return c.Status(status).JSON(fiber.Map{"record": rec, "created": created})
}

// HandleGenerateAllMonthly runs the generator for every profile. Admin only.
func (bc *BillingController) HandleGenerateAllMonthly(c *fiber.Ctx) error {
	res, err := bc.svc.GenerateMonthlyEntries(c.UserContext())
	if err != nil {
		return handleServiceError(c, "Billing", err)
	}
	bc.changed()
	return c.JSON(res)
}
