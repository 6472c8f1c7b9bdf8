package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mymoney/internal/api"
	"mymoney/internal/api/handlers"
	"mymoney/internal/repository"
	"mymoney/internal/service"
	"mymoney/pkg/auth"
	"mymoney/pkg/config"
	"mymoney/pkg/logger"
	"mymoney/pkg/mailer"
	"mymoney/pkg/postgres"

	"go.uber.org/zap"
)

// @title MyMoney API
// @version 1.0
// @description Personal finance tracker with receipt/statement ingestion

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting MyMoney service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	// Auth
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration)
	codeMailer := mailer.New(&cfg.SMTP, appLogger)
	authService := service.NewAuthService(userRepo, jwtManager, codeMailer, appLogger)

	// Ingestion pipeline
	extractorService := service.NewExtractorService(&cfg.OCR, appLogger)
	llmService := service.NewLLMService(&cfg.OpenRouter, appLogger)
	parserService := service.NewParserService(llmService, appLogger)
	ingestService := service.NewIngestService(extractorService, parserService, txRepo, appLogger)

	txService := service.NewTransactionService(txRepo, appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	txHandler := handlers.NewTransactionHandler(txService, appLogger)
	extractHandler := handlers.NewExtractHandler(ingestService, appLogger)

	app := api.SetupRouter(&cfg.Server, authHandler, txHandler, extractHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
