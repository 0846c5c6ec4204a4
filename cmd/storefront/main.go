package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spasojewagner/tehnotrade-api/internal/auth"
	"github.com/spasojewagner/tehnotrade-api/internal/cart"
	"github.com/spasojewagner/tehnotrade-api/internal/catalog"
	"github.com/spasojewagner/tehnotrade-api/internal/config"
	"github.com/spasojewagner/tehnotrade-api/internal/db"
	apphttp "github.com/spasojewagner/tehnotrade-api/internal/handler/http"
	"github.com/spasojewagner/tehnotrade-api/internal/metrics"
	"github.com/spasojewagner/tehnotrade-api/internal/order"
	"github.com/spasojewagner/tehnotrade-api/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront API starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	database, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	catalogRepo := catalog.NewRepository(database.Pool)
	catalogSvc := catalog.NewService(catalogRepo)

	cartRepo := cart.NewRepository(database.Pool)
	cartSvc := cart.NewService(cartRepo, catalogSvc)

	orderRepo := order.NewRepository(database.Pool)
	orderSvc := order.NewService(orderRepo, catalogSvc)

	userRepo := user.NewRepository(database.Pool)
	userSvc := user.NewService(userRepo)

	sessionRepo := auth.NewRepository(database.Pool)
	sessionSvc := auth.NewService(sessionRepo, cfg.App.SessionTTL)

	serverMetrics := metrics.NewServerMetrics("api")

	router := apphttp.NewRouter(apphttp.RouterDeps{
		Carts:    cartSvc,
		Orders:   orderSvc,
		Catalog:  catalogSvc,
		Users:    userSvc,
		Sessions: sessionSvc,
		Metrics:  serverMetrics,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
