package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/core/config"
	"go-library-services/internal/core/database"
	"go-library-services/internal/core/logger"
	"go-library-services/internal/core/server"
	"go-library-services/internal/domain"
	"go-library-services/internal/repo"
	"go-library-services/internal/service"
	"go-library-services/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New("auth", cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTTLHrs) * time.Hour,
	}

	users := repo.NewUserRepo(db)
	svc := service.NewAuthService(users, jwter, log)

	// 引导管理员：DB 瞬时不可用时带退避重试，不阻塞服务启动
	go svc.EnsureAdmin(context.Background(),
		cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword,
		cfg.Bootstrap.MaxRetries, time.Duration(cfg.Bootstrap.BaseDelaySec)*time.Second)

	r := router.NewAuthEngine(log, svc, jwter)
	srv := server.Build(cfg.App.Auth, r)
	log.Info("auth api starting", zap.String("addr", srv.Addr))
	server.Run(srv, log)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
