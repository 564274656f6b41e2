package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"planboard/internal/config"
	"planboard/internal/handlers"
	"planboard/internal/ledger"
	"planboard/internal/notifier"
	"planboard/internal/pdf"
	"planboard/internal/realtime"
	"planboard/internal/repositories"
	"planboard/internal/routes"
	"planboard/internal/services"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "planboard/docs"
)

func Run() {
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close database")
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)

	// === Ledger (redis) ===
	redisClient := ledger.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	dayLedger := ledger.NewRedisLedger(redisClient, cfg.Notify.LedgerTTLDays)

	// === Realtime + notification capabilities ===
	hub := realtime.NewAlertHub()
	notif := notifier.NewHubNotifier(hub)
	alertStore := services.NewAlertStore()

	// === Outbound channels ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	var telegramService *services.TelegramService
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramService, err = services.NewTelegramService(cfg.Telegram.BotToken)
		if err != nil {
			logrus.WithError(err).Warn("telegram disabled: bot init failed")
			telegramService = nil
		}
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	taskService := services.NewTaskService(taskRepo)
	reminderService := services.NewReminderService(taskRepo, alertStore, notif, hub, cfg.Notify.DefaultDueTime)
	deadlineService := services.NewDeadlineService(
		dayLedger, alertStore, notif, emailService, telegramService, hub,
		cfg.Notify.LookaheadDays,
	)
	notifyManager := services.NewNotifyManager(
		taskRepo, userRepo, reminderService, deadlineService, cfg.Notify.Interval(),
	)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userRepo, authService, emailService)
	taskHandler := handlers.NewTaskHandler(taskService, alertStore, hub, notif, telegramService, userRepo)
	alertHandler := handlers.NewAlertHandler(alertStore, notif, hub, notifyManager)
	reportHandler := handlers.NewReportHandler(taskRepo, userRepo, pdf.NewReportGenerator(), cfg.Notify.LookaheadDays)
	var integrationsHandler *handlers.IntegrationsHandler
	if telegramService != nil {
		integrationsHandler = handlers.NewIntegrationsHandler(userRepo, telegramService)
	}

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		cfg.Auth.JWTSecret,
		authHandler,
		taskHandler,
		alertHandler,
		reportHandler,
		integrationsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: listenAddr, Handler: router}

	go func() {
		logrus.WithField("addr", listenAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("server shutdown failed")
	}

	// drain in-flight email/telegram deliveries before exiting
	deadlineService.Wait()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
