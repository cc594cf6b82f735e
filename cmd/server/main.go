package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/5nonymous/money-for-rabbit/internal/config"
	"github.com/5nonymous/money-for-rabbit/internal/database"
	"github.com/5nonymous/money-for-rabbit/internal/handler"
	"github.com/5nonymous/money-for-rabbit/internal/logger"
	"github.com/5nonymous/money-for-rabbit/internal/queue"
	"github.com/5nonymous/money-for-rabbit/internal/repository"
	"github.com/5nonymous/money-for-rabbit/internal/router"
	"github.com/5nonymous/money-for-rabbit/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	appLog := logger.New(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		appLog.Warn().Msg("redis unreachable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	messages := repository.NewMessageRepo(db)
	publisher := service.NewPublisher(cfg.AMQPURL, appLog)

	// The mail consumer keeps its own broker connection and reconnect
	// loop; a dead broker only delays confirmation mails.
	go func() {
		if err := queue.StartMailConsumer(cfg, appLog); err != nil {
			appLog.Error().Err(err).Msg("mail consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, appLog, users, tokens, publisher),
		User:    handler.NewUserHandler(cfg, appLog, users, messages),
		Message: handler.NewMessageHandler(cfg, appLog, users, messages),
		Admin:   handler.NewAdminHandler(appLog, users, messages),
	}, cfg, rdb, appLog)

	addr := ":" + cfg.Port
	appLog.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
