package auth

import (
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"github.com/FACorreiaa/go-trip-planner-ai/config"
)

// SetupOAuthProviders registers the goth providers that have credentials
// configured and returns their names.
func SetupOAuthProviders(cfg config.OAuthConfig, secure bool, logger *slog.Logger) []string {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(600)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	gothic.Store = store

	var providers []goth.Provider
	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" {
		providers = append(providers, google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL, "email", "profile"))
	}
	if len(providers) == 0 {
		logger.Warn("No OAuth providers configured; /api/auth/oauth routes will reject requests")
		return nil
	}
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("OAuth providers registered", slog.Any("providers", names))
	return names
}
