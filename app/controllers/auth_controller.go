package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/app/repository"
	"github.com/ManuelReschke/FeeFox/internal/pkg/session"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// startSession stores the staff identity in the app session.
func startSession(c *fiber.Ctx, user *models.User) error {
	return session.Start(c, session.StaffIdentity{
		UserID:  user.ID,
		Name:    user.Name,
		Role:    user.Role,
		IsAdmin: user.IsAdmin(),
	})
}

func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	repo := repository.GetGlobalFactory().GetUserRepository()

	// never tell the caller which part of the credentials was wrong
	user, err := repo.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		log.Warnf("[Auth] failed login for %s from %s", req.Email, GetClientIP(c))
		return jsonError(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, ErrCodeForbidden, "account is not active")
	}

	if err := startSession(c, user); err != nil {
		return handleServiceError(c, "Auth", err)
	}

	now := time.Now()
	if err := repo.UpdateLastLogin(user.ID, now); err != nil {
		log.Warnf("[Auth] could not update last login of user %d: %v", user.ID, err)
	}
	user.LastLoginAt = &now

	log.Infof("[Auth] user %d logged in from %s", user.ID, GetClientIP(c))
	return c.JSON(fiber.Map{"user": user})
}

func HandleAuthLogout(c *fiber.Ctx) error {
	if err := session.End(c); err != nil {
		return handleServiceError(c, "Auth", err)
	}

	usercontext.SetUserContext(c, usercontext.UserContext{})
	return c.JSON(fiber.Map{"message": "logged out"})
}

// HandleMe returns the account of the current session.
func HandleMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, "Missing or invalid authentication")
	}

	account, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return handleServiceError(c, "Auth", err)
	}

	return c.JSON(fiber.Map{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"role":          account.Role,
		"status":        account.Status,
		"is_admin":      account.IsAdmin(),
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
	})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
