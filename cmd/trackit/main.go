package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	adapthttp "trackit/internal/adapter/http"
	"trackit/internal/adapter/postgres"
	"trackit/internal/app"
	"trackit/internal/auth"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		log.Fatal("TOKEN_SECRET is required")
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid TOKEN_TTL: %v", err)
		}
		ttl = d
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	tokens := auth.New([]byte(secret), ttl)
	habitRepo := postgres.NewHabitRepo(db)
	authSvc := app.NewAuthService(db, tokens)
	habitSvc := app.NewHabitService(habitRepo)
	statsSvc := app.NewStatsService(habitRepo)

	oidcConfig, err := loadOIDC(context.Background())
	if err != nil {
		log.Fatalf("oidc setup: %v", err)
	}

	h := adapthttp.New(authSvc, habitSvc, statsSvc, oidcConfig, webDir).Handler()
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// loadOIDC builds the SSO provider wiring when OIDC_ISSUER is set.
func loadOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	issuer := os.Getenv("OIDC_ISSUER")
	if issuer == "" {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
