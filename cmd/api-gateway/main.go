package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutorhub-api/api/swagger"
	"github.com/noah-isme/tutorhub-api/internal/handler"
	"github.com/noah-isme/tutorhub-api/internal/rbac"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/cache"
	"github.com/noah-isme/tutorhub-api/pkg/config"
	"github.com/noah-isme/tutorhub-api/pkg/database"
	"github.com/noah-isme/tutorhub-api/pkg/logger"
	"github.com/noah-isme/tutorhub-api/pkg/mail"
)

// @title TutorHub API
// @version 1.0.0
// @description Tutoring marketplace: learner and teacher accounts, bookings and reviews
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metrics := service.NewMetricsService()
	validate := validator.New()

	var mailer mail.Mailer = mail.NewLogMailer(logr)
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			SSL:      cfg.Mail.SSL,
			From:     cfg.Mail.From,
		})
	} else {
		logr.Warn("SMTP_HOST not set; notifications will only be logged")
	}
	dispatcher := mail.NewDispatcher(mailer, mail.DispatcherConfig{
		Workers:     cfg.Mail.Workers,
		Retries:     cfg.Mail.Retries,
		RetryDelay:  2 * time.Second,
		SendTimeout: 30 * time.Second,
		Logger:      logr,
		Recorder:    metrics,
	})
	dispatcher.Start(ctx)

	credentials := service.NewCredentialService(service.CredentialConfig{
		Secret:     cfg.JWT.Secret,
		BcryptCost: cfg.Password.BcryptCost,
		Issuer:     "tutorhub-api",
	})
	authService := service.NewAuthService(userRepo, teacherRepo, sessionRepo, credentials, rbac.Default(), auditRepo, metrics, validate, logr, service.AuthConfig{
		SessionTTL:    cfg.Session.TTL,
		LoginTokenTTL: cfg.JWT.LoginExpiration,
	})
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TeacherListTTL, logr, true)

	userService := service.NewUserService(userRepo, bookingRepo, reviewRepo, tokenRepo, credentials, dispatcher, auditRepo, validate, logr, service.UserConfig{
		FrontendURL:          cfg.FrontendURL,
		ResetTokenTTL:        cfg.JWT.ResetTokenLifetime,
		VerificationTokenTTL: cfg.JWT.VerifyExpiration,
	})
	teacherService := service.NewTeacherService(teacherRepo, bookingRepo, reviewRepo, cacheService, credentials, dispatcher, auditRepo, validate, logr, cfg.Cache.TeacherListTTL)
	bookingService := service.NewBookingService(bookingRepo, userRepo, teacherRepo, authService, metrics, auditRepo, validate, logr)
	reviewService := service.NewReviewService(reviewRepo, userRepo, teacherRepo, auditRepo, validate, logr)

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Cookie:         handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Auth:           authService,
		Users:          userService,
		Teachers:       teacherService,
		Bookings:       bookingService,
		Reviews:        reviewService,
		Audit:          auditRepo,
		Metrics:        metrics,
		Checks: map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	dispatcher.Stop()
}
