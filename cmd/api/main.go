package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-dcm/slot-booking-api/api/swagger"
	"github.com/campus-dcm/slot-booking-api/internal/feed"
	"github.com/campus-dcm/slot-booking-api/internal/handler"
	"github.com/campus-dcm/slot-booking-api/internal/identity"
	"github.com/campus-dcm/slot-booking-api/internal/middleware"
	"github.com/campus-dcm/slot-booking-api/internal/repository"
	"github.com/campus-dcm/slot-booking-api/internal/service"
	"github.com/campus-dcm/slot-booking-api/pkg/cache"
	"github.com/campus-dcm/slot-booking-api/pkg/config"
	"github.com/campus-dcm/slot-booking-api/pkg/database"
	"github.com/campus-dcm/slot-booking-api/pkg/jobs"
	"github.com/campus-dcm/slot-booking-api/pkg/logger"
	corsmiddleware "github.com/campus-dcm/slot-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-dcm/slot-booking-api/pkg/middleware/requestid"
)

// @title Slot Booking API
// @version 0.1.0
// @description Faculty appointment slots, schedule materialization and admin roster
// @BasePath /
// @schemes http

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

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid schedule timezone", "timezone", cfg.Schedule.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
	}

	slotRepo := repository.NewSlotRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	emailRepo := repository.NewAuthorizedEmailRepository(db)
	identities := identity.NewSQLProvider(db)

	claimSync := service.NewClaimSyncService(emailRepo, identities, metrics, logr)
	dispatcher := feed.NewDispatcher(claimSync, jobs.QueueConfig{
		Workers:    cfg.ClaimSync.Workers,
		BufferSize: cfg.ClaimSync.BufferSize,
		MaxRetries: cfg.ClaimSync.MaxRetries,
		RetryDelay: cfg.ClaimSync.RetryDelay,
		Logger:     logr,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	tokens := service.NewTokenService(cfg.JWT.Secret)
	slotSvc := service.NewSlotService(slotRepo, cacheSvc, validate, logr, loc, cfg.Cache.TTL)
	bookingSvc := service.NewBookingService(slotRepo, cacheSvc, metrics, logr, loc, cfg.Booking)
	scheduleSvc := service.NewScheduleService(slotRepo, templateRepo, cacheSvc, metrics, logr, loc)
	templateSvc := service.NewTemplateService(templateRepo, validate, logr)
	adminEmailSvc := service.NewAdminEmailService(emailRepo, dispatcher, validate, logr)

	slotHandler := handler.NewSlotHandler(slotSvc, loc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, loc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	adminEmailHandler := handler.NewAdminEmailHandler(adminEmailSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("", middleware.JWT(tokens))
	{
		authed.GET("/slots", slotHandler.List)
		authed.GET("/slots/mine", slotHandler.ListMine)
		authed.GET("/slots/:id", slotHandler.Get)
		authed.POST("/slots/:id/book", bookingHandler.Book)
		authed.POST("/slots/:id/cancel", bookingHandler.Cancel)
	}

	admin := authed.Group("", middleware.RequireAdmin())
	{
		admin.PUT("/slots/:id", slotHandler.Update)
		admin.DELETE("/slots/:id", slotHandler.Delete)

		admin.POST("/schedules/materialize", scheduleHandler.Materialize)
		admin.DELETE("/schedules", scheduleHandler.EraseRange)

		admin.GET("/templates", templateHandler.List)
		admin.POST("/templates/seed", templateHandler.Seed)
		admin.GET("/templates/:day", templateHandler.Get)
		admin.PUT("/templates/:day", templateHandler.Save)
		admin.DELETE("/templates/:day", templateHandler.Delete)

		admin.GET("/admin/emails", adminEmailHandler.List)
		admin.POST("/admin/emails", adminEmailHandler.Add)
		admin.DELETE("/admin/emails/:email", adminEmailHandler.Remove)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
