package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/rbac"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutorhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutorhub-api/pkg/middleware/requestid"
)

// Auth is what the router needs from the authentication service.
type Auth interface {
	authService
	Authenticate(ctx context.Context, kinds []models.PrincipalKind, carriers ...service.Carrier) (*models.Principal, error)
	Authorize(ctx context.Context, principal *models.Principal, permission rbac.Permission) error
}

// AuditWriter persists request level audit entries.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RouterConfig carries the collaborators and settings of the HTTP surface.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	Cookie         CookieConfig
	EnableDocs     bool
	Logger         *zap.Logger

	Auth     Auth
	Users    userService
	Teachers teacherService
	Bookings bookingService
	Reviews  reviewService
	Audit    AuditWriter
	Metrics  *service.MetricsService
	Checks   map[string]ReadinessCheck
}

// NewRouter assembles the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.WithResponseMeta())

	ops := NewMetricsHandler(cfg.Metrics, cfg.Checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authn := func(kinds ...models.PrincipalKind) gin.HandlerFunc {
		return middleware.Authenticate(cfg.Auth, cfg.Cookie.Name, kinds...)
	}
	authz := func(permission rbac.Permission) gin.HandlerFunc {
		return middleware.Authorize(cfg.Auth, permission)
	}
	userOnly := authn(models.PrincipalUser)
	teacherOnly := authn(models.PrincipalTeacher)
	anyone := authn(models.PrincipalUser, models.PrincipalTeacher)

	api := r.Group(cfg.APIPrefix)

	userAuth := NewAuthHandler(cfg.Auth, models.PrincipalUser, cfg.Cookie)
	users := NewUserHandler(cfg.Users)
	userGroup := api.Group("/users")
	{
		userGroup.POST("/register", users.Register)
		userGroup.POST("/auth/session/login", userAuth.SessionLogin)
		userGroup.POST("/auth/token/login", userAuth.TokenLogin)
		userGroup.POST("/logout", userOnly, userAuth.Logout)
		userGroup.GET("/profile", userOnly, authz(rbac.ReadUser), users.Profile)
		userGroup.POST("/forgot-password", users.ForgotPassword)
		userGroup.GET("/reset-password/:token", users.VerifyResetToken)
		userGroup.POST("/reset-password", users.ResetPassword)
		userGroup.POST("/verify-email/request", userOnly, users.RequestEmailVerification)
		userGroup.POST("/verify-email", users.VerifyEmail)

		userGroup.GET("", userOnly, authz(rbac.ReadUsers), users.List)
		userGroup.POST("", userOnly, authz(rbac.CreateUser), users.Create)
		userGroup.GET("/:id", userOnly, authz(rbac.ReadUsers), users.Get)
		userGroup.PATCH("/:id", userOnly, authz(rbac.UpdateUser), users.Update)
		userGroup.DELETE("/:id", userOnly, authz(rbac.DeleteUser), users.Delete)
	}

	teacherAuth := NewAuthHandler(cfg.Auth, models.PrincipalTeacher, cfg.Cookie)
	teachers := NewTeacherHandler(cfg.Teachers)
	reviews := NewReviewHandler(cfg.Reviews)
	teacherGroup := api.Group("/teachers")
	{
		teacherGroup.POST("/register", teachers.Register)
		teacherGroup.POST("/auth/session/login", teacherAuth.SessionLogin)
		teacherGroup.POST("/auth/token/login", teacherAuth.TokenLogin)
		teacherGroup.POST("/logout", teacherOnly, teacherAuth.Logout)
		teacherGroup.GET("/profile", teacherOnly, authz(rbac.ReadTeacher), teachers.Profile)

		teacherGroup.GET("", teachers.List)
		teacherGroup.GET("/:id", teachers.Get)
		teacherGroup.PATCH("/:id", anyone, authz(rbac.UpdateTeacher), teachers.Update)
		teacherGroup.DELETE("/:id", userOnly, authz(rbac.DeleteTeacher), teachers.Delete)
		teacherGroup.GET("/:id/reviews", reviews.List)
		teacherGroup.POST("/:id/reviews", userOnly, authz(rbac.CreateReview), reviews.Create)
	}

	bookings := NewBookingHandler(cfg.Bookings)
	bookingGroup := api.Group("/bookings")
	{
		bookingGroup.POST("", userOnly, authz(rbac.CreateBooking), bookings.Create)
		bookingGroup.GET("", anyone, authz(rbac.ReadBooking), bookings.Mine)
		bookingGroup.GET("/all", userOnly, authz(rbac.ReadBookings), bookings.All)
		bookingGroup.GET("/export", userOnly, authz(rbac.ReadBookings),
			middleware.Audit(cfg.Audit, cfg.Logger, models.AuditActionBookingExport, "booking"), bookings.Export)
		bookingGroup.GET("/:id", anyone, bookings.Get)
		bookingGroup.PATCH("/:id/status", anyone, authz(rbac.UpdateBooking), bookings.UpdateStatus)
		bookingGroup.DELETE("/:id", userOnly, authz(rbac.DeleteBooking), bookings.Delete)
	}

	return r
}
