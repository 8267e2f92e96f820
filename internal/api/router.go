package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sign-identity/identity-api/docs"
	"github.com/sign-identity/identity-api/internal/api/handler"
	"github.com/sign-identity/identity-api/internal/api/middleware"
	"github.com/sign-identity/identity-api/internal/core/domain"
	"github.com/sign-identity/identity-api/internal/core/ports"
	"github.com/sign-identity/identity-api/internal/core/service"
	mongostore "github.com/sign-identity/identity-api/internal/infrastructure/db/mongo"
	redisstore "github.com/sign-identity/identity-api/internal/infrastructure/db/redis"
	"github.com/sign-identity/identity-api/internal/infrastructure/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit recorder is injected so the caller owns the dispatcher lifecycle.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, tokenTTL time.Duration, audit ports.AuditRecorder, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	roleRepo := mongostore.NewRoleRepository(db)
	revoker := redisstore.NewRevocationList(rdb)
	issuer := token.NewJWTIssuer(jwtSecret, tokenTTL)

	authService := service.NewAuthService(accountRepo, issuer, revoker, audit, log)
	roleService := service.NewRoleService(roleRepo, accountRepo, audit, log)

	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleService)

	authMW := middleware.Auth(jwtSecret, revoker)
	// Logout skips the revocation check so a second logout with an
	// already-revoked token still answers 200.
	logoutMW := middleware.Auth(jwtSecret, nil)

	// --- Auth routes ---
	auth := e.Group("/Auth")
	auth.POST("/Register", authHandler.Register)
	auth.POST("/Login", authHandler.Login)
	auth.POST("/Logout", authHandler.Logout, logoutMW,
		middleware.RBAC(domain.RoleAdmin, domain.RoleTeacher, domain.RoleStudent))
	auth.GET("", authHandler.GetAll, authMW)
	auth.GET("/:id", authHandler.GetByID, authMW,
		middleware.RBAC(domain.RoleAdmin, domain.RoleTeacher))
	auth.DELETE("/:id", authHandler.Delete, authMW,
		middleware.RBAC(domain.RoleAdmin))
	auth.PUT("/:id", authHandler.Update, authMW,
		middleware.RBAC(domain.RoleAdmin, domain.RoleTeacher))

	// --- Role routes ---
	role := e.Group("/Role")
	role.POST("", roleHandler.Create)
	role.GET("", roleHandler.GetAll, authMW, middleware.RBAC(domain.RoleAdmin))
	role.GET("/:roleName", roleHandler.GetByName)
	role.DELETE("/:roleName", roleHandler.Delete, authMW, middleware.RBAC(domain.RoleAdmin))
	role.PUT("/:roleName", roleHandler.Rename, authMW, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
