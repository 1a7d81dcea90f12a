package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"

	"github.com/predial/vistoria/api"
	dbfs "github.com/predial/vistoria/db"
	"github.com/predial/vistoria/internal/config"
	"github.com/predial/vistoria/internal/db"
	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/repository/sqlite"
	"github.com/predial/vistoria/internal/validate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// .env is optional, absence is not an error
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		return err
	}

	repo := sqlite.New(conn)
	engine := lifecycle.NewEngine(repo, repo, repo, repo, repo, repo, repo)

	validator, err := validate.New()
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, engine, repo, validator)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.SetupRoutes(),
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  2 * cfg.APITimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
