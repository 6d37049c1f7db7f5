package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/n1fty/cms/docs"
	"github.com/n1fty/cms/internal/api/handler"
	"github.com/n1fty/cms/internal/api/middleware"
	"github.com/n1fty/cms/internal/core/domain"
	"github.com/n1fty/cms/internal/core/ports"
)

// Dependencies carries everything the HTTP layer needs. Services are built by
// the caller so the router stays independent of the chosen store.
type Dependencies struct {
	Logger      zerolog.Logger
	Development bool
	CORSOrigin  string
	// FrontendDir, when set, is served as static files at /.
	FrontendDir string

	Auth      ports.AuthService
	Clients   ports.ClientService
	Dashboard ports.DashboardService
	Tokens    ports.TokenVerifier
	Users     ports.SubjectResolver

	// Health lists the dependencies probed by GET /health.
	Health map[string]handler.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger, deps.Development)

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType, handler.HeaderIdempotencyKey},
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "cms",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	clientHandler := handler.NewClientHandler(deps.Clients)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)
	interactionHandler := handler.NewInteractionHandler()
	healthHandler := handler.NewHealthHandler(deps.Health)

	requireAuth := middleware.Auth(deps.Tokens, deps.Users)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- Client routes ---
	clients := api.Group("/clients", requireAuth)
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete, adminOnly)

	// --- Dashboard ---
	api.GET("/dashboard/stats", dashboardHandler.Stats, requireAuth)

	// --- Interactions (placeholders) ---
	interactions := api.Group("/interactions", requireAuth)
	interactions.GET("", interactionHandler.List)
	interactions.GET("/:id", interactionHandler.Get)
	interactions.POST("", interactionHandler.Create)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Readiness)
	e.GET("/health/live", healthHandler.Liveness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if deps.FrontendDir != "" {
		e.Static("/", deps.FrontendDir)
	} else {
		e.GET("/", func(c echo.Context) error {
			return c.JSON(http.StatusOK, map[string]string{
				"message": "CMS Backend API",
				"docs":    "/swagger/index.html",
			})
		})
	}

	return e
}
