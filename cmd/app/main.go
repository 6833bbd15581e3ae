package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"challenge75/internal/api"
	"challenge75/internal/challenge"
	"challenge75/internal/middleware"
	"challenge75/internal/repository"
	"challenge75/internal/service"
	"challenge75/pkg/auth"
	"challenge75/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	startDate, err := cfg.Challenge.ParseStartDate()
	if err != nil {
		zapLogger.Fatal("Failed to parse challenge config", zap.Error(err))
	}
	window := challenge.NewWindow(startDate, challenge.DurationDays)

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	userService := service.NewUserService(repo, cfg.Challenge.InitialRestDays)
	feedHub := api.NewFeedHub(userService)
	progressService := service.NewProgressService(repo, window, feedHub)
	feedService := service.NewFeedService(repo)

	telegramAuth := auth.NewTelegramAuth(cfg.TelegramAuth.TelegramBotToken, cfg.TelegramAuth.DebugMode)
	authz := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, telegramAuth)
	api.NewDayRoutes(a, progressService, telegramAuth, window)
	api.NewFeedRoutes(a, feedService, userService, telegramAuth, authz, feedHub)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server",
		zap.String("addr", addr),
		zap.String("challenge_start", window.Start.Format("2006-01-02")),
		zap.String("challenge_end", window.End().Format("2006-01-02")))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
