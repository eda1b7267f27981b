package app

import (
	"blogCMS/internal/config"
	"blogCMS/internal/database"
	handlers "blogCMS/internal/handler"
	"blogCMS/internal/middleware"
	"blogCMS/internal/notify"
	"blogCMS/internal/repository"
	"blogCMS/internal/router"
	"blogCMS/internal/service"
	"blogCMS/internal/storage"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
)

type App struct {
	DB       *database.DB
	Redis    *redis.Client
	Services *service.Service
	Handler  http.Handler
}

func New(cfg *config.Config) *App {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	notifier, err := notify.New(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать отправку приглашений: %v", err)
	}

	// redis is optional, without it the verify endpoints are not throttled
	var limiter middleware.Limiter
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit)
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, cfg, minioClient, notifier)
	h := handlers.NewHandlers(services, db, cfg)

	routes := router.New(h, middleware.RateLimit(cfg.RateLimit, limiter))

	handlerChain := middleware.Chain(
		routes,
		middleware.AuthMiddleware(services.Auth),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
	)

	return &App{DB: db, Redis: rdb, Services: services, Handler: handlerChain}
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Printf("failed to close redis: %v", err)
		}
	}
	if err := a.DB.CloseDB(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}
