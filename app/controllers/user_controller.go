package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/app/repository"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

// UserController handles staff user administration using the repository pattern
type UserController struct {
	repos *repository.Repositories
}

// NewUserController creates a new user controller with repository dependencies
func NewUserController(repos *repository.Repositories) *UserController {
	return &UserController{repos: repos}
}

var userController *UserController

// InitializeUserController initializes the global user controller with repositories
func InitializeUserController() {
	userController = NewUserController(repository.GetGlobalRepositories())
}

// GetUserController returns the global user controller instance
func GetUserController() *UserController {
	if userController == nil {
		InitializeUserController()
	}
	return userController
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=employee admin"`
	Phone    string `json:"phone" validate:"max=50"`
}

type updateUserRequest struct {
	Name     string `json:"name" validate:"omitempty,min=3,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=employee admin"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive disabled"`
	Phone    string `json:"phone" validate:"max=50"`
}

// HandleList lists staff users, optionally filtered by ?q=
func (uc *UserController) HandleList(c *fiber.Ctx) error {
	var (
		users []models.User
		err   error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		users, err = uc.repos.User.Search(q)
	} else {
		offset, limit := pagination(c)
		users, err = uc.repos.User.List(offset, limit)
	}
	if err != nil {
		return handleServiceError(c, "Users", err)
	}

	total, err := uc.repos.User.Count()
	if err != nil {
		return handleServiceError(c, "Users", err)
	}
	return c.JSON(fiber.Map{"users": users, "total": total})
}

// HandleGet returns one staff user
func (uc *UserController) HandleGet(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid user id")
	}
	user, err := uc.repos.User.GetByID(id)
	if err != nil {
		return handleServiceError(c, "Users", err)
	}
	return c.JSON(user)
}

// HandleCreate creates a staff user
func (uc *UserController) HandleCreate(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	if _, err := uc.repos.User.GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, ErrCodeConflict, "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return handleServiceError(c, "Users", err)
	}

	user, err := models.CreateUser(strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password, req.Role)
	if err != nil {
		return handleServiceError(c, "Users", err)
	}
	user.Phone = strings.TrimSpace(req.Phone)
	if err := uc.repos.User.Create(user); err != nil {
		return handleServiceError(c, "Users", err)
	}

	log.Infof("[Users] user %d created by %d", user.ID, usercontext.GetUserID(c))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdate changes profile fields, role, status or password of a staff user
func (uc *UserController) HandleUpdate(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid user id")
	}
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
	}
	if ok, err := validateRequest(c, &req); !ok {
		return err
	}

	user, err := uc.repos.User.GetByID(id)
	if err != nil {
		return handleServiceError(c, "Users", err)
	}

	selfID := usercontext.GetUserID(c)
	if id == selfID && ((req.Role != "" && req.Role != user.Role) || (req.Status != "" && req.Status != models.STATUS_ACTIVE)) {
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, "you cannot demote or deactivate your own account")
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.TrimSpace(req.Email)
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Status != "" {
		user.Status = req.Status
	}
	user.Phone = strings.TrimSpace(req.Phone)
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return handleServiceError(c, "Users", err)
		}
	}
	if err := user.Validate(); err != nil {
		return handleServiceError(c, "Users", err)
	}
	if err := uc.repos.User.Update(user); err != nil {
		return handleServiceError(c, "Users", err)
	}
	return c.JSON(user)
}

// HandleDelete soft deletes a staff user and unlinks its OAuth identities
func (uc *UserController) HandleDelete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "invalid user id")
	}
	if id == usercontext.GetUserID(c) {
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, "you cannot delete your own account")
	}

	if err := uc.repos.User.Delete(id); err != nil {
		return handleServiceError(c, "Users", err)
	}
	if err := uc.repos.ProviderAccount.DeleteByUserID(id); err != nil {
		log.Warnf("[Users] could not unlink provider accounts of user %d: %v", id, err)
	}

	log.Infof("[Users] user %d deleted by %d", id, usercontext.GetUserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
