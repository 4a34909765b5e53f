package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	keyfileadapter "github.com/Codeplay77/otpvault/internal/adapter/driven/keyfile"
	sqliteadapter "github.com/Codeplay77/otpvault/internal/adapter/driven/sqlite"
	httphandler "github.com/Codeplay77/otpvault/internal/adapter/driving/http"
	"github.com/Codeplay77/otpvault/internal/application"
	"github.com/Codeplay77/otpvault/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a bad environment).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"key_path", cfg.KeyPath,
		"min_secret_bytes", cfg.MinSecretBytes,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode). NewDB holds an
	// exclusive lock on the vault for the life of the process, so a second
	// instance pointed at the same file fails here instead of corrupting it.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Load the master key, generating one on first run. The key bytes are
	// never logged; only the location is.
	masterKey, err := keyfileadapter.New(cfg.KeyPath).LoadOrCreate()
	if err != nil {
		return err
	}
	slog.Info("master key ready", "path", cfg.KeyPath)

	// 6. Wire adapters and the vault service.
	accountStore := sqliteadapter.NewAccountRepo(db)
	vault := application.NewVaultService(accountStore, masterKey, cfg.MinSecretBytes)

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(vault, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("otpvault started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	// 11. Log shutdown complete.
	slog.Info("shutdown complete")
	return nil
}
