package main

import (
	"context"
	"log"

	"github.com/vbonduro/menuboard/internal/config"
	"github.com/vbonduro/menuboard/internal/db"
	"github.com/vbonduro/menuboard/internal/logging"
	"github.com/vbonduro/menuboard/internal/photostore/local"
	"github.com/vbonduro/menuboard/internal/service"
	"github.com/vbonduro/menuboard/internal/store"
	"github.com/vbonduro/menuboard/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	menuStore := store.NewMenuStore(store.NewKVStore(database), cfg.MenuKey)

	if cfg.PhotoBackend != "local" {
		logger.Error("unsupported photo backend", "backend", cfg.PhotoBackend)
		return
	}
	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		logger.Error("failed to initialize photo store", "error", err)
		return
	}

	menuService := service.NewMenuService(menuStore, photoStg, logger)
	view := menuService.OwnerActivate(context.Background())
	logger.Info("menu loaded", "key", cfg.MenuKey, "dishes", len(view.Items))

	server := web.NewServer(menuService, photoStg, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
