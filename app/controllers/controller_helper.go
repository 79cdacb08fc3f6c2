package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

var validate = validator.New()

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// handleServiceError maps service errors onto the JSON error taxonomy:
// validation errors are shown to the operator, store failures are logged and hidden.
func handleServiceError(c *fiber.Ctx, component string, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, billing.ErrProfileNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "resource not found")
	case billing.IsValidationError(err):
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.As(err, &verrs):
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, validationMessage(verrs))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return jsonError(c, fiber.StatusConflict, ErrCodeConflict, "resource already exists")
	default:
		log.Errorf("[%s] %s %s failed: %v", component, c.Method(), c.Path(), err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeInternal, "Internal server error")
	}
}

func validationMessage(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" failed on "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

// validateRequest runs struct validation and writes a 422 response on failure.
func validateRequest(c *fiber.Ctx, req any) (bool, error) {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, validationMessage(verrs))
		}
		return false, jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, err.Error())
	}
	return true, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pagination reads page/per_page and returns offset and limit.
func pagination(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", DefaultPerPage)
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return (page - 1) * perPage, perPage
}

// actorFromContext is the staff member making the request.
func actorFromContext(c *fiber.Ctx) billing.Actor {
	uc := usercontext.GetUserContext(c)
	return billing.Actor{UserID: uc.UserID, Name: uc.Username}
}

// GetClientIP guesses the client address from common proxy headers for log
// lines. The headers are client controlled, rate limits key on c.IP().
func GetClientIP(c *fiber.Ctx) string {
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		return cfIP
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		// the first entry is the original client
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
