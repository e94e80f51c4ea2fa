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

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/khata/internal/auth"
	"github.com/MrJamesThe3rd/khata/internal/cloud"
	"github.com/MrJamesThe3rd/khata/internal/config"
	"github.com/MrJamesThe3rd/khata/internal/database"
	"github.com/MrJamesThe3rd/khata/internal/export"
	khataHttp "github.com/MrJamesThe3rd/khata/internal/http"
	authHandler "github.com/MrJamesThe3rd/khata/internal/http/auth"
	backupHandler "github.com/MrJamesThe3rd/khata/internal/http/backup"
	ledgerHandler "github.com/MrJamesThe3rd/khata/internal/http/ledger"
	overviewHandler "github.com/MrJamesThe3rd/khata/internal/http/overview"
	transferHandler "github.com/MrJamesThe3rd/khata/internal/http/transfer"
	"github.com/MrJamesThe3rd/khata/internal/importer"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
	"github.com/MrJamesThe3rd/khata/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DB.Driver, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		ledgerService = ledger.NewService(store.New(db, cfg.DB.Driver), ledger.NewEngine())
		exportService = export.NewService(ledgerService, cfg.App.Currency)
		importService = importer.NewService(ledgerService)
		cloudService  = cloud.NewService(ledgerService, newDrive(cfg.Cloud.Provider, cfg.Cloud.BaseURL, cfg.Cloud.Token))
		authService   = auth.NewService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		scheduler     = notify.NewScheduler(ledgerService, notify.LogNotifier{Logger: slog.Default()},
			notify.Settings{
				Enabled:          cfg.Notify.Enabled,
				ReminderDays:     cfg.Notify.ReminderDays,
				OverdueReminders: cfg.Notify.OverdueReminders,
				WeeklyReports:    cfg.Notify.WeeklyReports,
			}, cfg.App.Currency, cfg.Notify.Interval)
	)

	if !authService.Enabled() {
		slog.Warn("AUTH_SECRET is empty, API is unauthenticated")
	}

	router := khataHttp.New(khataHttp.Handlers{
		Customers:         ledgerHandler.NewHandler(ledgerService, ledger.KindReceivable),
		Creditors:         ledgerHandler.NewHandler(ledgerService, ledger.KindPayable),
		CustomerTransfers: transferHandler.NewHandler(exportService, importService, ledgerService, ledger.KindReceivable),
		CreditorTransfers: transferHandler.NewHandler(exportService, importService, ledgerService, ledger.KindPayable),
		Archive:           transferHandler.NewArchive(exportService),
		Backup:            backupHandler.NewHandler(cloudService),
		Overview:          overviewHandler.NewHandler(ledgerService, scheduler),
		Auth:              authHandler.NewHandler(authService),
	}, authService, cfg.CORS.AllowedOrigins)

	go scheduler.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "driver", cfg.DB.Driver)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newDrive(provider, baseURL, token string) cloud.Drive {
	if provider == "http" {
		return cloud.NewHTTPDrive(baseURL, token)
	}

	return cloud.NewMemoryDrive()
}
