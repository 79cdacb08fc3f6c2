package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/ManuelReschke/FeeFox/app/models"
	"github.com/ManuelReschke/FeeFox/app/repository"
	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
	"github.com/ManuelReschke/FeeFox/internal/pkg/oauth"
)

var errNoStaffAccount = errors.New("no staff account for this identity")

// consoleURL is the front-end base URL, always with a trailing slash.
func consoleURL() string {
	return strings.TrimRight(env.GetEnv("CONSOLE_URL", "/"), "/") + "/"
}

// HandleOAuthBegin starts the provider flow for supported providers.
func HandleOAuthBegin(c *fiber.Ctx) error {
	if !oauth.IsSupported(c.Params("provider")) {
		return jsonError(c, fiber.StatusNotFound, ErrCodeNotFound, "unknown provider")
	}
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the staff user in.
// Only existing staff accounts may sign in; identities are linked by email.
func HandleOAuthCallback(c *fiber.Ctx) error {
	fm := fiber.Map{"type": "error"}

	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Warnf("[OAuth] provider flow failed: %v", err)
		fm["message"] = "Sign-in with the provider failed"
		return flash.WithError(c, fm).Redirect(consoleURL() + "login")
	}

	repos := repository.GetGlobalRepositories()
	appUser, err := resolveOAuthUser(repos, u)
	if err != nil {
		if errors.Is(err, errNoStaffAccount) {
			log.Warnf("[OAuth] rejected %s identity %s (%s)", u.Provider, u.UserID, u.Email)
			fm["message"] = "No staff account is registered for this email"
		} else {
			log.Errorf("[OAuth] callback failed: %v", err)
			fm["message"] = "Sign-in failed, please try again"
		}
		return flash.WithError(c, fm).Redirect(consoleURL() + "login")
	}
	if !appUser.IsActive() {
		fm["message"] = "Your account is not active"
		return flash.WithError(c, fm).Redirect(consoleURL() + "login")
	}

	if err := startSession(c, appUser); err != nil {
		log.Errorf("[OAuth] session save failed: %v", err)
		fm["message"] = "Sign-in failed, please try again"
		return flash.WithError(c, fm).Redirect(consoleURL() + "login")
	}

	if err := repos.User.UpdateLastLogin(appUser.ID, time.Now()); err != nil {
		log.Warnf("[OAuth] could not update last login of user %d: %v", appUser.ID, err)
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Welcome back, " + appUser.Name,
	}).Redirect(consoleURL())
}

// resolveOAuthUser finds the linked staff user, linking the identity on first use.
func resolveOAuthUser(repos *repository.Repositories, u goth.User) (*models.User, error) {
	pa, err := repos.ProviderAccount.GetByProviderUserID(u.Provider, u.UserID)
	switch {
	case err == nil:
		pa.SetTokens(u.AccessToken, u.RefreshToken, u.ExpiresAt)
		if err := repos.ProviderAccount.Update(pa); err != nil {
			return nil, err
		}
		return repos.User.GetByID(pa.UserID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	email := strings.TrimSpace(u.Email)
	if email == "" {
		return nil, errNoStaffAccount
	}
	appUser, err := repos.User.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNoStaffAccount
	}
	if err != nil {
		return nil, err
	}

	pa = &models.ProviderAccount{
		UserID:         appUser.ID,
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
		Email:          email,
	}
	pa.SetTokens(u.AccessToken, u.RefreshToken, u.ExpiresAt)
	if err := repos.ProviderAccount.Create(pa); err != nil {
		return nil, err
	}
	log.Infof("[OAuth] linked %s identity to user %d", u.Provider, appUser.ID)
	return appUser, nil
}
