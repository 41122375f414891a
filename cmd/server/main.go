// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/villadaniela/fincaweb/internal/api/auth"
	"github.com/villadaniela/fincaweb/internal/api/calendar"
	"github.com/villadaniela/fincaweb/internal/api/dashboard"
	"github.com/villadaniela/fincaweb/internal/api/gallery"
	"github.com/villadaniela/fincaweb/internal/api/home"
	"github.com/villadaniela/fincaweb/internal/api/reviews"
	"github.com/villadaniela/fincaweb/internal/config"
	"github.com/villadaniela/fincaweb/internal/db"
	"github.com/villadaniela/fincaweb/internal/email"
	"github.com/villadaniela/fincaweb/internal/media"
	"github.com/villadaniela/fincaweb/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	var sender email.EmailSender
	if cfg.Email.Sender != "" {
		sesClient, err := email.NewSESClient(
			cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey,
			cfg.Email.Region, cfg.Email.Sender,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize SES client")
		}
		sender = sesClient
	} else {
		log.Warn().Msg("Email sender not configured, login links disabled")
	}

	var store media.ObjectStore
	if cfg.Media.Bucket != "" {
		s3Store, err := media.NewS3Store(
			cfg.Media.AccessKeyID, cfg.Media.SecretAccessKey,
			cfg.Media.Region, cfg.Media.Bucket, cfg.Media.BaseURL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 store")
		}
		store = s3Store
	} else {
		log.Warn().Msg("Media bucket not configured, gallery uploads disabled")
	}

	auth.InitHandlers(database, sender, auth.Options{
		AppName:     cfg.App.Name,
		BaseURL:     cfg.App.BaseURL,
		Environment: cfg.App.Environment,
		SecretKey:   cfg.App.SecretKey,
		TrustProxy:  cfg.App.Environment != "development",
	})
	calendar.InitHandlers(database)
	gallery.InitHandlers(database, store)
	reviews.InitHandlers(database)
	home.InitHandlers(database)
	dashboard.InitHandlers(database)

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterCleanupJobs(database); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup jobs")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}()

	server := newServer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
