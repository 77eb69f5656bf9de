package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freshveg/basket-agent/config"
	"github.com/freshveg/basket-agent/internal/app/controller"
	"github.com/freshveg/basket-agent/internal/app/repository"
	"github.com/freshveg/basket-agent/internal/app/service"
	"github.com/freshveg/basket-agent/internal/app/state"
	"github.com/freshveg/basket-agent/internal/router"
	"github.com/freshveg/basket-agent/internal/scheduler"
	"github.com/freshveg/basket-agent/internal/session"
	"github.com/freshveg/basket-agent/internal/storage"
	"github.com/freshveg/basket-agent/internal/websocket"
	"github.com/freshveg/basket-agent/pkg/logger"
	"github.com/freshveg/basket-agent/pkg/vegapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting FreshVeg basket agent", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Durable store for guest snapshots
	var kv storage.KV
	switch cfg.Storage.Driver {
	case "redis":
		kv, err = storage.NewRedisKV(&cfg.Storage.Redis)
	default:
		kv, err = storage.NewSQLiteKV(cfg.Storage.Path)
	}
	if err != nil {
		logger.Fatal("Failed to open durable store", err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("Failed to close durable store", err)
		}
	}()

	sess := session.New()

	remote, err := vegapi.NewClient(vegapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, sess)
	if err != nil {
		logger.Fatal("Failed to create grocery API client", err)
	}

	// Badge push hub
	hub := websocket.NewHub()
	go hub.Run()

	// State containers and engine
	cartState := state.NewCartState()
	wishlistState := state.NewWishlistState()
	badges := service.NewBadgePublisher(cartState, wishlistState, hub)

	guestStore := repository.NewGuestStore(kv)
	cartService := service.NewCartService(cartState, guestStore, remote, sess, badges)
	defer cartService.Close()
	wishlistService := service.NewWishlistService(wishlistState, guestStore, remote, sess, badges)
	defer wishlistService.Close()
	syncService := service.NewSyncService(guestStore, remote, sess, cartService, wishlistService)

	// Controllers
	cartController := controller.NewCartController(cartService)
	wishlistController := controller.NewWishlistController(wishlistService)
	sessionController := controller.NewSessionController(sess, syncService, cartService, wishlistService)
	badgeController := controller.NewBadgeController(badges, cartService, wishlistService, hub)

	// Background refresh of server collections
	if cfg.Refresh.Enabled {
		refreshScheduler := scheduler.NewRefreshScheduler(sess, cartService, wishlistService, cfg.Refresh.Spec)
		if err := refreshScheduler.Start(); err != nil {
			logger.Warn("Refresh scheduler disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer refreshScheduler.Stop()
		}
	}

	r := router.NewRouter(
		cartController,
		wishlistController,
		sessionController,
		badgeController,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf("127.0.0.1:%s", cfg.Server.Port)
		logger.Info("Agent started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start agent", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down agent gracefully...")

	// Let in-flight dispatches settle before closing the store.
	cartService.Flush()
	wishlistService.Flush()
	hub.Stop()

	logger.Info("Agent stopped successfully")
}
