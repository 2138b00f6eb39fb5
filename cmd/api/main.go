package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payhere-integration-demo/internal/client"
	"payhere-integration-demo/internal/config"
	"payhere-integration-demo/internal/logging"
	"payhere-integration-demo/internal/repository"
	"payhere-integration-demo/internal/server"
	"payhere-integration-demo/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)

	db := client.InitDBClient(cfg.DatabaseURL)
	payhereClient := client.NewPayhereClient(&cfg.PayHere)

	orderRepo := repository.NewOrderRepository(db)
	planRepo := repository.NewPlanRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := planRepo.Seed(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("seed plans")
	}

	apiKeyService := service.NewAPIKeyService(apiKeyRepo)
	payhereService := service.NewPayhereService(
		db, payhereClient, cfg.BaseURL,
		orderRepo,
		planRepo,
		apiKeyService,
		logger,
	)
	userService := service.NewUserService(userRepo, cfg.JWT)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(payhereService, apiKeyService, userService, planRepo, logger)

	logger.Info().Str("addr", serverAddr).Str("mode", cfg.PayHere.Mode).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info().Msg("signal received, starting graceful shutdown")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}
