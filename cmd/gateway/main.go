package main

import (
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-library-services/internal/core/config"
	"go-library-services/internal/core/logger"
	"go-library-services/internal/core/server"
	"go-library-services/internal/gateway"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New("gateway", cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	client := gateway.NewClient(cfg.Services, log)
	store := gateway.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	h := gateway.NewHandler(client, store,
		cfg.Session.CookieName,
		time.Duration(cfg.Session.TTLHrs)*time.Hour,
		log)

	r := gateway.NewEngine(log, h, "web/templates/*.html")
	srv := server.Build(cfg.App.Gateway, r)
	log.Info("gateway starting",
		zap.String("addr", srv.Addr),
		zap.String("auth", cfg.Services.AuthURL),
		zap.String("book", cfg.Services.BookURL),
		zap.String("borrow", cfg.Services.BorrowURL),
	)
	server.Run(srv, log)
}
