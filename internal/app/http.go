package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarcoTuMD/Template-Admin/internal/auth/credentials"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/directory"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/handler"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/keystone"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider/google"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/provider/keycloak"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/resolver"
	"github.com/MarcoTuMD/Template-Admin/internal/config"
	"github.com/MarcoTuMD/Template-Admin/internal/logger"
	"github.com/MarcoTuMD/Template-Admin/internal/metrics"
	"github.com/MarcoTuMD/Template-Admin/internal/middleware"
	"github.com/MarcoTuMD/Template-Admin/internal/session"
	"github.com/MarcoTuMD/Template-Admin/internal/sessionadapter"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Identity provider
	// ----------------------------

	registry, err := setupProviders(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	idp := keystone.New(keystone.Options{
		Accounts:   credentials.NewService(infra.DB),
		Providers:  registry,
		Resolver:   resolver.NewDBResolver(infra.DB),
		Profiles:   directory.New(infra.DB),
		Sessions:   session.NewRedisStore(infra.Redis.Client),
		Tokens:     keystone.NewTokenIssuer([]byte(cfg.TokenSigningKey), cfg.TokenIssuer, cfg.TokenTTL),
		Feed:       keystone.NewFeed(infra.Redis.Client),
		SessionTTL: cfg.SessionTTL,

		RefreshEvery: cfg.TokenTTL * 3 / 4,
	})

	// ----------------------------
	// Session state
	// ----------------------------

	hosts := sessionadapter.NewRegistry(cfg.ClientIdleTTL)
	go hosts.Start()

	authHandler := handler.NewHandler(
		func(clientID string) sessionadapter.IdentityProvider { return idp.Bind(clientID) },
		registry,
		hosts,
		session.CookieOptions{
			Secure:   cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
		cfg.HomePath,
	)

	authMiddleware := middleware.NewAuthMiddleware(idp)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery(), metrics.GinMiddleware())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		claims, _ := middleware.ClaimsFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString("userID"),
			"email":    claims.Email,
			"provider": claims.Provider,
		})
	})

	return router, func() error {
		hosts.Stop()
		return infra.Close()
	}, nil
}

// setupProviders registers the federated providers that are configured.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleEnabled() {
		p, err := google.New(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if cfg.KeycloakEnabled() {
		p, err := keycloak.New(ctx, cfg.KeycloakIssuer, cfg.KeycloakClientID,
			cfg.KeycloakRedirectURL, cfg.KeycloakPublicBaseURL)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	registry := provider.NewRegistry(list...)
	logger.Info("federated providers ready", map[string]any{"providers": registry.Names()})
	return registry, nil
}
