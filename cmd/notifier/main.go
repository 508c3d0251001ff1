package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/telconova/notifier/db"
	"github.com/telconova/notifier/internal/config"
	"github.com/telconova/notifier/internal/consumer"
	"github.com/telconova/notifier/internal/router"
	"github.com/telconova/notifier/internal/scheduler"
	"github.com/telconova/notifier/internal/senders"
	"github.com/telconova/notifier/internal/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	config.Load()
	setupLogging()

	if config.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable is not set")
	}

	if config.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable is not set")
	}

	if err := db.ConnectDatabase(config.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	registry := senders.NewRegistry()
	registry.Register(types.ChannelEmail, senders.NewEmailSender())
	registry.Register(types.ChannelSMS, senders.NewSMSSender())

	if err := scheduler.Initialize(registry); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer scheduler.Shutdown()

	eventConsumer, err := consumer.Start()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start event consumer")
	}
	defer eventConsumer.Stop()

	r := router.NewRouter()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(":" + config.Port)
	}()

	log.Info().Str("port", config.Port).Msg("notifier started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
}

func setupLogging() {
	level, err := zerolog.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetEnv("LOG_PRETTY", "") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
