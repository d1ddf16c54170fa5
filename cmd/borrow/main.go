package main

import (
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-library-services/internal/core/auth"
	"go-library-services/internal/core/cache"
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
	log, cleanup := logger.New("borrow", cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.Borrow{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTTLHrs) * time.Hour,
	}

	// 借还翻转可借状态后负责打掉 book 服务的详情缓存
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	borrows := repo.NewBorrowRepo(db)
	books := repo.NewBookRepo(db)
	svc := service.NewBorrowService(db, borrows, books, c, log)

	r := router.NewBorrowEngine(log, svc, jwter)
	srv := server.Build(cfg.App.Borrow, r)
	log.Info("borrow api starting", zap.String("addr", srv.Addr))
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
