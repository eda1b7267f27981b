package main

import (
	"blogCMS/cmd/app"
	"blogCMS/internal/config"
	"fmt"
	"log"
	"net/http"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	application := app.New(cfg)
	defer application.Close()

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Printf("Сервер запущен на %s", addr)
	log.Printf("База данных: %s", cfg.DB.DbNAME)
	log.Printf("Уведомления о приглашениях: %s", cfg.Notifier)

	if err := http.ListenAndServe(addr, application.Handler); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
