package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nurpe/freightmarket/internal/auth"
	"github.com/nurpe/freightmarket/internal/config"
	"github.com/nurpe/freightmarket/internal/db"
	"github.com/nurpe/freightmarket/internal/excel"
	httphandler "github.com/nurpe/freightmarket/internal/http"
	"github.com/nurpe/freightmarket/internal/http/middleware"
	"github.com/nurpe/freightmarket/internal/logger"
	"github.com/nurpe/freightmarket/internal/pdf"
	"github.com/nurpe/freightmarket/internal/repository"
	"github.com/nurpe/freightmarket/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "freightmarket",
		Short:         "Freight marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrate()
		},
	})
	return cmd
}

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Environment, cfg.LogLevel), nil
}

func migrate() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect database")
		return err
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}
	log.Info().Msg("migrations applied")
	return nil
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	database, err := db.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect database")
		return err
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}

	accountRepo := repository.NewAccountRepository(database)
	listingRepo := repository.NewListingRepository(database)
	ratingRepo := repository.NewRatingRepository(database)

	tokenIssuer := auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL)
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(httphandler.Services{
		Listings: service.NewListingService(listingRepo, cfg),
		Ratings:  service.NewRatingService(ratingRepo, listingRepo),
		Accounts: service.NewAccountService(accountRepo, listingRepo, ratingRepo, tokenIssuer),
		Stats:    service.NewStatsService(listingRepo, accountRepo),
		Exports:  service.NewExportService(accountRepo, listingRepo, ratingRepo, excel.NewGenerator(), pdf.NewGenerator()),
	}, httphandler.CookieConfig{
		Secure: cfg.Auth.CookieSecure,
		TTL:    cfg.Auth.AccessTTL,
	}, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting freightmarket")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
