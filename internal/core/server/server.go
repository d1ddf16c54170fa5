package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-library-services/internal/core/config"
)

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

func Build(h config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           Addr(h.Host, h.Port),
		Handler:        handler,
		ReadTimeout:    secOr(h.ReadTimeoutSec, 5),
		WriteTimeout:   secOr(h.WriteTimeoutSec, 10),
		IdleTimeout:    secOr(h.IdleTimeoutSec, 60),
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

// Run 异步启动 + 等信号优雅关闭；四个 main 共用
func Run(srv *http.Server, l *zap.Logger) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("http start FAILED", zap.Error(err))
		}
	}()
	l.Info("http started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Info("http stopped gracefully")
}

func secOr(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Second
}
