package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/preloved-backend/internal/config"
	"github.com/ignatzorin/preloved-backend/internal/db"
	"github.com/ignatzorin/preloved-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/preloved-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/preloved-backend/internal/http/router"
	"github.com/ignatzorin/preloved-backend/internal/logger"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/storage"
	"github.com/ignatzorin/preloved-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.IsDevelopment() {
		logger.SetTextFormatter()
	}
	log := logger.WithComponent("main")

	// Цены отдаются числами, а не строками.
	decimal.MarshalJSONWithoutQuotes = true

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPoolOptions())
	if err != nil {
		log.Fatalf("ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	imageStorage, err := storage.NewImageStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("не удалось подготовить файловое хранилище: %v", err)
	}

	cache := service.NewCacheService(time.Minute)
	defer cache.Close()

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	productRepo := repository.NewProductRepository(dbConn)
	favoriteRepo := repository.NewFavoriteRepository(dbConn)
	cartRepo := repository.NewCartRepository(dbConn)
	purchaseRepo := repository.NewPurchaseRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	chatRepo := repository.NewChatRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	adminRepo := repository.NewAdminRepository(dbConn)

	// Вебсокеты. Хаб проверяет участие в чате через сервис чатов, созданный ниже.
	var chatService *service.ChatService
	hub := ws.NewHub(ctx, ws.RoomAuthorizerFunc(func(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
		return chatService.CanJoinRoom(ctx, userID, roomID)
	}))
	goroutine.SafeGo(hub.Run)

	checks := map[string]httpHandlers.Pinger{"database": dbConn}
	if cfg.RedisURL != "" {
		relay, err := ws.NewRedisRelay(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Redis недоступен, события чатов доставляются только локально")
		} else {
			defer relay.Close()
			hub.SetRelay(relay)
			goroutine.SafeGo(func() { relay.Run(ctx, hub.DeliverRoom) })
			checks["redis"] = httpHandlers.PingerFunc(relay.Ping)
		}
	}

	// Сервисы.
	notificationService := service.NewNotificationService(notificationRepo, hub)
	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo, reviewRepo, productRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo, favoriteRepo, userRepo, categoryRepo, cartRepo, imageStorage, service.ProductOptions{
		PlaceholderImage: cfg.PlaceholderImage,
		MaxImages:        cfg.MaxProductImages,
	})
	cartService := service.NewCartService(cartRepo, productRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, productRepo, notificationService)
	reviewService := service.NewReviewService(reviewRepo, purchaseRepo)
	chatService = service.NewChatService(chatRepo, productRepo, hub, notificationService)
	reportService := service.NewReportService(reportRepo, userRepo, productRepo, chatRepo, notificationService)
	adminService := service.NewAdminService(adminRepo, userRepo, productRepo, reportService, cache, cfg.DashboardCacheTTL, notificationService)

	// HTTP хэндлеры и роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		User:         httpHandlers.NewUserHandler(userService),
		Category:     httpHandlers.NewCategoryHandler(categoryService),
		Product:      httpHandlers.NewProductHandler(productService),
		Cart:         httpHandlers.NewCartHandler(cartService),
		Purchase:     httpHandlers.NewPurchaseHandler(purchaseService),
		Review:       httpHandlers.NewReviewHandler(reviewService),
		Chat:         httpHandlers.NewChatHandler(chatService),
		Report:       httpHandlers.NewReportHandler(reportService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Admin:        httpHandlers.NewAdminHandler(adminService),
		Health:       httpHandlers.NewHealthHandler(checks),
		WS:           httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins),
	}, httpRouter.Auth{Tokens: tokenManager, Users: userRepo}, imageStorage.Root())

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("ошибка остановки http сервера")
		}
	})

	log.Infof("HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
