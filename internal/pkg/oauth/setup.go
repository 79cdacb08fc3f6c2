package oauth

import (
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
	appsession "github.com/ManuelReschke/FeeFox/internal/pkg/session"
)

// Providers lists the OAuth providers staff can sign in with.
var Providers = []string{"google"}

// stateTTL bounds how long an unfinished sign-in may take.
const stateTTL = 15 * time.Minute

// Enabled reports whether OAuth credentials are configured.
func Enabled() bool {
	return env.GetEnv("GOOGLE_KEY", "") != "" && env.GetEnv("GOOGLE_SECRET", "") != ""
}

// IsSupported reports whether provider is registered.
func IsSupported(provider string) bool {
	return slices.Contains(Providers, provider)
}

// CallbackURL is the absolute redirect target registered with the provider.
func CallbackURL(provider string) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/auth/" + provider + "/callback"
}

// Setup registers the Google provider and keeps the OAuth state in Redis next to the app sessions.
func Setup() {
	provider := google.New(
		env.GetEnv("GOOGLE_KEY", ""),
		env.GetEnv("GOOGLE_SECRET", ""),
		CallbackURL("google"),
		"email", "profile",
	)
	// restrict the account picker to the company workspace
	if hd := env.GetEnv("GOOGLE_HOSTED_DOMAIN", ""); hd != "" {
		provider.SetHostedDomain(hd)
	}
	goth.UseProviders(provider)

	gothfiber.SessionStore = session.New(session.Config{
		Storage:        appsession.NewRedisStorage(appsession.OAuthStateDB),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     stateTTL,
	})

	log.Infof("[OAuth] providers enabled: %s", strings.Join(Providers, ", "))
}
