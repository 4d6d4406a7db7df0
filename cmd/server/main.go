// Package main runs the EJO Heza HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ejoheza/backend/config"
	"github.com/ejoheza/backend/internal/auth"
	"github.com/ejoheza/backend/internal/authz"
	"github.com/ejoheza/backend/internal/cache"
	"github.com/ejoheza/backend/internal/contact"
	"github.com/ejoheza/backend/internal/dashboard"
	"github.com/ejoheza/backend/internal/donations"
	"github.com/ejoheza/backend/internal/events"
	"github.com/ejoheza/backend/internal/middleware"
	"github.com/ejoheza/backend/internal/news"
	"github.com/ejoheza/backend/internal/payments"
	"github.com/ejoheza/backend/internal/site"
	"github.com/ejoheza/backend/internal/validation"
	"github.com/ejoheza/backend/internal/volunteers"
	"github.com/ejoheza/backend/pkg/database"
	"github.com/ejoheza/backend/pkg/paypal"
	"github.com/ejoheza/backend/pkg/queue"
	"github.com/ejoheza/backend/pkg/redis"
	"github.com/ejoheza/backend/pkg/response"
	"github.com/ejoheza/backend/pkg/storage"
)

// cacheStore is what both cache backends provide.
type cacheStore interface {
	cache.VersionedBackend
	cache.Counter
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	validation.Register()

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var (
		store  cacheStore        = cache.NewMemoryBackend()
		mailer volunteers.Mailer = queue.Discard{Logger: logger}
		rdb    *redis.Client
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache and dropping emails", zap.Error(err))
		} else {
			defer rdb.Close()
			store = cache.NewRedisBackend(rdb.Client, "ejoheza:")
			mailer = queue.NewQueue(rdb.Client, logger)
		}
	}

	var exporter donations.Exporter
	if cfg.AWS.Region != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled, exports will be streamed", zap.Error(err))
		} else {
			exporter = s3Client
		}
	}

	collections := cache.NewCollections(store, cfg.Cache.CollectionTTL, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	revoker := auth.NewRevoker(store)

	// Auth and authorization
	authRepo := auth.NewRepository(pool)
	checker := authz.NewChecker(authz.NewRepository(pool), store, cfg.Cache.AuthzTTL, logger)
	authHandler := auth.NewHandler(authRepo, jwtService, checker, revoker, logger)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		admin, err := auth.SeedAdmin(ctx, authRepo, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName, logger)
		if err != nil {
			logger.Error("seed admin", zap.Error(err))
		} else {
			checker.Forget(ctx, admin.ID)
		}
	}

	// Records
	volunteerRepo := volunteers.NewRepository(pool)
	volunteerHandler := volunteers.NewHandler(volunteerRepo, collections, mailer, cfg.Email.OrgInbox, logger)
	donationRepo := donations.NewRepository(pool)
	donationHandler := donations.NewHandler(donationRepo, collections, exporter, cfg.PayPal.MeURL, logger)
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, collections, logger)
	newsRepo := news.NewRepository(pool)
	newsHandler := news.NewHandler(newsRepo, collections, logger)

	siteHandler := site.NewHandler(newsRepo, eventRepo, logger)
	contactHandler := contact.NewHandler(mailer, cfg.Email.OrgInbox, logger)
	dashboardHandler := dashboard.NewHandler(dashboard.NewRepository(pool), logger)

	paypalClient := paypal.NewClient(paypal.Config{
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		BaseURL:      cfg.PayPal.BaseURL,
		Currency:     cfg.PayPal.Currency,
		BrandName:    cfg.PayPal.BrandName,
	}, nil, logger)
	paymentHandler := payments.NewHandler(paypalClient, donationRepo, collections, cfg.Server.SiteOrigin, logger)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins, "/functions/"))

	// Health
	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
		if err := pool.Ping(c.Request.Context()); err != nil {
			status["status"], status["database"] = "degraded", err.Error()
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Healthy(c.Request.Context()); err != nil {
				status["status"], status["redis"] = "degraded", err.Error()
			}
		}
		if status["status"] != "ok" {
			c.JSON(http.StatusServiceUnavailable, response.Body{Success: false, Data: status})
			return
		}
		response.OK(c, status)
	})

	formLimit := func(scope string) gin.HandlerFunc {
		return middleware.RateLimit(store, scope, cfg.RateLimit.PerMinute, time.Minute, logger)
	}

	// Auth
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", formLimit("login"), authHandler.Login)
		authGroup.POST("/register", formLimit("register"), authHandler.Register)
		authGroup.GET("/me", middleware.JWT(jwtService, revoker), authHandler.Me)
		authGroup.POST("/logout", middleware.JWT(jwtService, revoker), authHandler.Logout)
	}

	// Public pages and intake forms; a bearer token is optional
	public := router.Group("")
	public.Use(middleware.OptionalJWT(jwtService, revoker))
	{
		public.GET("/home", siteHandler.Home)
		public.GET("/about", siteHandler.About)
		public.GET("/news", newsHandler.ListPublic)
		public.GET("/news/:id", newsHandler.GetPublic)
		public.GET("/events", eventHandler.ListPublic)
		public.GET("/donations/presets", donationHandler.Presets)

		public.POST("/volunteers", formLimit("volunteers"), volunteerHandler.Apply)
		public.POST("/donations", formLimit("donations"), donationHandler.Donate)
		public.POST("/contact", formLimit("contact"), contactHandler.Send)
	}

	// Payment function (own CORS, outside the envelope)
	paymentHandler.Register(router)

	// Admin dashboard
	admin := router.Group("/admin")
	admin.Use(middleware.JWT(jwtService, revoker), middleware.RequireAdmin(checker))
	{
		admin.GET("/dashboard", dashboardHandler.Overview)

		admin.GET("/volunteers", volunteerHandler.List)
		admin.GET("/volunteers/:id", volunteerHandler.GetByID)
		admin.PATCH("/volunteers/:id/status", volunteerHandler.UpdateStatus)

		admin.GET("/donations", donationHandler.List)
		admin.GET("/donations/export", donationHandler.Export)
		admin.GET("/donations/:id", donationHandler.GetByID)
		admin.PATCH("/donations/:id/status", donationHandler.UpdateStatus)

		admin.GET("/events", eventHandler.List)
		admin.POST("/events", eventHandler.Create)
		admin.GET("/events/:id", eventHandler.GetByID)
		admin.PUT("/events/:id", eventHandler.Update)
		admin.DELETE("/events/:id", eventHandler.Delete)
		admin.PATCH("/events/:id/status", eventHandler.UpdateStatus)

		admin.GET("/news", newsHandler.List)
		admin.POST("/news", newsHandler.Create)
		admin.GET("/news/:id", newsHandler.GetByID)
		admin.PUT("/news/:id", newsHandler.Update)
		admin.DELETE("/news/:id", newsHandler.Delete)
		admin.PATCH("/news/:id/publish", newsHandler.SetPublished)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
