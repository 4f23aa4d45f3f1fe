package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/club-billing/config"
	"github.com/Dosada05/club-billing/db"
	"github.com/Dosada05/club-billing/handlers"
	"github.com/Dosada05/club-billing/live"
	"github.com/Dosada05/club-billing/models"
	"github.com/Dosada05/club-billing/repositories"
	"github.com/Dosada05/club-billing/routes"
	"github.com/Dosada05/club-billing/services"
	"github.com/Dosada05/club-billing/storage"
	_ "github.com/lib/pq"
)

const elapsedTickInterval = 15 * time.Second // Как часто стойка получает ELAPSED_TICK

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	reportLoc := time.UTC
	if cfg.ReportTimezone != "" {
		reportLoc, err = time.LoadLocation(cfg.ReportTimezone)
		if err != nil {
			logger.Error("invalid REPORT_TIMEZONE", slog.String("tz", cfg.ReportTimezone), slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.EnsureSchema(context.Background(), dbConn); err != nil {
		logger.Error("failed to ensure database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema ensured")

	// Инициализация загрузчика файлов (Cloudflare R2). Без конфигурации
	// эндпоинты загрузки отвечают 503, остальное работает.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2Bucket,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("file storage is not configured, photo and logo uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	staffRepo := repositories.NewPostgresStaffRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	serviceRepo := repositories.NewPostgresServiceRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	lineItemRepo := repositories.NewPostgresLineItemRepository(dbConn)
	paymentRepo := repositories.NewPostgresMembershipPaymentRepository(dbConn)
	expenseRepo := repositories.NewPostgresExpenseRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(staffRepo)
	clubService := services.NewClubService(clubRepo, uploader)
	playerService := services.NewPlayerService(playerRepo, uploader)
	catalogService := services.NewCatalogService(serviceRepo)
	sessionService := services.NewSessionService(dbConn, sessionRepo, playerRepo, lineItemRepo, wsHub, logger)
	lineItemService := services.NewLineItemService(lineItemRepo, sessionRepo, serviceRepo, playerRepo, wsHub)
	membershipService := services.NewMembershipService(dbConn, paymentRepo, playerRepo)
	expenseService := services.NewExpenseService(expenseRepo)
	reportService := services.NewReportService(sessionRepo, paymentRepo, expenseRepo, playerRepo, reportLoc)
	logger.Info("Services initialized")

	// Периодический ELAPSED_TICK по открытым сессиям: стойка видит
	// идущее время и текущую сумму без запросов.
	go func() {
		ticker := time.NewTicker(elapsedTickInterval)
		defer ticker.Stop()
		for range ticker.C {
			broadcastElapsedTicks(context.Background(), sessionService, wsHub, logger)
		}
	}()

	// Инициализация обработчиков HTTP
	handlerSet := routes.HandlerSet{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Player:     handlers.NewPlayerHandler(playerService),
		Catalog:    handlers.NewCatalogHandler(catalogService),
		Session:    handlers.NewSessionHandler(sessionService),
		LineItem:   handlers.NewLineItemHandler(lineItemService),
		Membership: handlers.NewMembershipHandler(membershipService),
		Expense:    handlers.NewExpenseHandler(expenseService),
		Report:     handlers.NewReportHandler(reportService),
		Club:       handlers.NewClubHandler(clubService),
		Live:       handlers.NewLiveHandler(wsHub),
	}
	logger.Info("HTTP handlers initialized")

	router := routes.SetupRoutes(handlerSet, []byte(cfg.JWTSecretKey))
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

// broadcastElapsedTicks рассылает по комнатам клубов снимок открытых
// сессий: сколько идёт и на какую сумму.
func broadcastElapsedTicks(ctx context.Context, sessionService services.SessionService, hub *live.Hub, logger *slog.Logger) {
	playing := models.SessionStatusPlaying
	sessions, err := sessionService.ListSessions(ctx, repositories.ListSessionsFilter{Status: &playing})
	if err != nil {
		logger.Error("elapsed tick: failed to list open sessions", slog.Any("error", err))
		return
	}

	now := time.Now()
	type tick struct {
		SessionID      int   `json:"session_id"`
		PlayerID       int   `json:"player_id"`
		ElapsedSeconds int64 `json:"elapsed_seconds"`
		RunningTotal   int64 `json:"running_total"`
	}
	byClub := make(map[int][]tick)
	for _, s := range sessions {
		byClub[s.ClubID] = append(byClub[s.ClubID], tick{
			SessionID:      s.ID,
			PlayerID:       s.PlayerID,
			ElapsedSeconds: int64(now.Sub(s.CheckInTime).Seconds()),
			RunningTotal:   s.RunningTotal,
		})
	}
	for clubID, ticks := range byClub {
		hub.BroadcastToClub(clubID, live.Event{
			Type:    live.EventElapsedTick,
			ClubID:  clubID,
			Payload: ticks,
		})
	}
}
