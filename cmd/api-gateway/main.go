package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/neetrino-com/neetrino-academy-sub005/api/swagger"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/access"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/handler"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/middleware"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/models"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/repository"
	"github.com/neetrino-com/neetrino-academy-sub005/internal/service"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/cache"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/config"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/database"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/export"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/jobs"
	"github.com/neetrino-com/neetrino-academy-sub005/pkg/logger"
	corsmiddleware "github.com/neetrino-com/neetrino-academy-sub005/pkg/middleware/cors"
	reqidmiddleware "github.com/neetrino-com/neetrino-academy-sub005/pkg/middleware/requestid"
)

// @title Neetrino Academy API
// @version 1.0.0
// @description Learning management API: courses, groups, schedules and payments
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional. Cached reads fall through to postgres without it.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	ruleRepo := repository.NewScheduleRuleRepository(db)
	eventRepo := repository.NewEventRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsService := service.NewMetricsService()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "neetrino-academy",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, cacheRepo, cfg.Catalog.CacheTTL, validate, logr)
	groupService := service.NewGroupService(groupRepo, userRepo, validate, logr)
	chatService := service.NewChatService(chatRepo, groupRepo, validate, logr)
	assessmentService := service.NewAssessmentService(assessmentRepo, groupRepo, validate, logr)
	notificationService := service.NewNotificationService(notificationRepo, groupRepo, cacheRepo, metricsService, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	}, validate, logr)
	scheduleService := service.NewScheduleService(ruleRepo, eventRepo, groupRepo, notificationService, logr)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, courseRepo, export.NewReceiptRenderer(), service.PaymentConfig{
		ReceiptIssuer:   cfg.Payments.ReceiptIssuer,
		DefaultCurrency: cfg.Payments.Currency,
	}, validate, logr)

	notificationService.Start(context.Background())
	defer notificationService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	courseHandler := handler.NewCourseHandler(courseService)
	groupHandler := handler.NewGroupHandler(groupService, chatService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService, metricsService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	resolver := access.DefaultResolver(access.DefaultTable())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	protected.Use(middleware.AccessGate(resolver, cfg.APIPrefix, logr))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/admin/users", userHandler.List)
		protected.GET("/admin/users/:id", userHandler.Get)
		protected.POST("/admin/users", userHandler.Create)
		protected.PUT("/admin/users/:id", userHandler.Update)
		protected.DELETE("/admin/users/:id", userHandler.Delete)
		protected.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)

		protected.GET("/courses", courseHandler.List)
		protected.GET("/courses/:id", courseHandler.Get)
		protected.POST("/courses", courseHandler.Create)
		protected.PUT("/courses/:id", courseHandler.Update)
		protected.DELETE("/courses/:id", courseHandler.Delete)
		protected.GET("/courses/:id/modules", courseHandler.ListModules)
		protected.POST("/courses/:id/modules", courseHandler.CreateModule)
		protected.GET("/modules/:id/lessons", courseHandler.ListLessons)
		protected.POST("/modules/:id/lessons", courseHandler.CreateLesson)
		protected.PUT("/lessons/:id", courseHandler.UpdateLesson)

		protected.GET("/groups", groupHandler.List)
		protected.GET("/groups/:id", groupHandler.Get)
		protected.GET("/groups/:id/members", groupHandler.ListMembers)
		protected.POST("/groups/:id/chat", groupHandler.PostChat)
		protected.GET("/groups/:id/chat", groupHandler.ListChat)
		protected.POST("/admin/groups", groupHandler.Create)
		protected.PUT("/admin/groups/:id", groupHandler.Update)
		protected.DELETE("/admin/groups/:id", groupHandler.Delete)
		protected.POST("/admin/groups/:id/members", groupHandler.AddMember)
		protected.DELETE("/admin/groups/:id/members/:userId", groupHandler.RemoveMember)

		protected.POST("/admin/groups/:id/schedule/generate",
			middleware.Audit(userRepo, models.AuditActionScheduleExpand, "schedule"),
			scheduleHandler.Generate)
		protected.GET("/admin/groups/:id/schedule/rules", scheduleHandler.ListRules)
		protected.POST("/admin/groups/:id/schedule/rules", scheduleHandler.CreateRule)
		protected.DELETE("/admin/groups/:id/schedule/rules/:ruleId", scheduleHandler.DeactivateRule)
		protected.GET("/calendar", scheduleHandler.Calendar)
		protected.POST("/admin/events", scheduleHandler.CreateEvent)
		protected.PUT("/admin/events/:id", scheduleHandler.UpdateEvent)
		protected.DELETE("/admin/events/:id", scheduleHandler.DeleteEvent)

		protected.POST("/quizzes", assessmentHandler.CreateQuiz)
		protected.GET("/quizzes/:id", assessmentHandler.GetQuiz)
		protected.POST("/quizzes/:id/submit", assessmentHandler.SubmitQuiz)
		protected.POST("/assignments", assessmentHandler.CreateAssignment)
		protected.GET("/assignments", assessmentHandler.ListAssignments)
		protected.POST("/assignments/:id/submit", assessmentHandler.SubmitAssignment)
		protected.POST("/assignments/:id/grade", assessmentHandler.GradeAssignment)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
		protected.POST("/notifications/broadcast", notificationHandler.Broadcast)

		protected.GET("/admin/payments", paymentHandler.List)
		protected.POST("/admin/payments", paymentHandler.Create)
		protected.POST("/admin/payments/:id/pay", paymentHandler.MarkPaid)
		protected.GET("/payments/:id/receipt", paymentHandler.Receipt)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
