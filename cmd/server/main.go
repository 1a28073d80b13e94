package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"film-ticket-desk/config"
	"film-ticket-desk/internal/app"
	"film-ticket-desk/internal/handler"
	"film-ticket-desk/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	if err := logger.Configure(cfg.App.LogLevel, []string{"stderr"}); err != nil {
		panic(err)
	}
	log := logger.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	desk, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize app", zap.Error(err))
	}
	defer desk.Close()

	if err := desk.Start(ctx); err != nil {
		log.Fatal("Failed to start app", zap.Error(err))
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	handler.NewFilmHandler(desk.Dispatcher).RegisterRoutes(router)
	handler.NewPageHandler(desk.Dispatcher).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.App.Addr,
		Handler: router,
	}

	go func() {
		log.Info("Listening", zap.String("addr", cfg.App.Addr), zap.String("films_api", cfg.FilmsAPI.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
