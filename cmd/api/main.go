package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/ebill/internal/auth"
	"github.com/MrJamesThe3rd/ebill/internal/backup"
	backupStore "github.com/MrJamesThe3rd/ebill/internal/backup/store"
	"github.com/MrJamesThe3rd/ebill/internal/bill"
	billStore "github.com/MrJamesThe3rd/ebill/internal/bill/store"
	"github.com/MrJamesThe3rd/ebill/internal/config"
	"github.com/MrJamesThe3rd/ebill/internal/database"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	ebillHttp "github.com/MrJamesThe3rd/ebill/internal/http"
	adminHandler "github.com/MrJamesThe3rd/ebill/internal/http/admin"
	authHandler "github.com/MrJamesThe3rd/ebill/internal/http/auth"
	billHandler "github.com/MrJamesThe3rd/ebill/internal/http/bill"
	importHandler "github.com/MrJamesThe3rd/ebill/internal/http/importcsv"
	reportHandler "github.com/MrJamesThe3rd/ebill/internal/http/report"
	"github.com/MrJamesThe3rd/ebill/internal/importer"
	"github.com/MrJamesThe3rd/ebill/internal/metrics"
	"github.com/MrJamesThe3rd/ebill/internal/report"
	"github.com/MrJamesThe3rd/ebill/internal/user"
	userStore "github.com/MrJamesThe3rd/ebill/internal/user/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	metrics.Init()
	export.Issuer = cfg.App.Name

	var (
		tokens        = auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		userService   = user.NewService(userStore.New(db))
		billService   = bill.NewService(billStore.New(db))
		reportService = report.NewService(billService)
		importService = importer.NewService(billService)
		backupService = backup.NewService(backupStore.New(db))
	)

	if err := userService.EnsureAdmin(ctx, cfg.App.AdminPassword); err != nil {
		slog.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	router := ebillHttp.New(tokens, cfg.CORS.AllowedOrigins, ebillHttp.Handlers{
		Auth:    authHandler.NewHandler(userService, tokens),
		Bills:   billHandler.NewHandler(billService),
		Reports: reportHandler.NewHandler(reportService),
		Import:  importHandler.NewHandler(importService),
		Admin:   adminHandler.NewHandler(userService, backupService),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
