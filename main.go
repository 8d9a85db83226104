package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/joblens/internal/database"
	"github.com/muhammadolammi/joblens/internal/logger"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("error configuring logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := &ServiceConfig{Config: cfg}

	if cfg.DBURL != "" {
		db, err := sql.Open("postgres", cfg.DBURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error opening db")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("error connecting to db")
		}
		svc.DB = database.New(db)
		log.Info().Msg("analysis history enabled")
	}

	if cfg.RabbitMQURL != "" {
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to RabbitMQ")
		}
		defer conn.Close()
		publisher, err := newRabbitPublisher(conn)
		if err != nil {
			log.Fatal().Err(err).Msg("error declaring updates exchange")
		}
		svc.Publisher = publisher
		log.Info().Str("exchange", updatesExchange).Msg("status updates enabled")
	}

	if cfg.GoogleAPIKey != "" {
		adv, err := newAgentAdvisor(ctx, cfg.GoogleAPIKey, cfg.AdvisorModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create advisor")
		}
		svc.Advisor = adv
		log.Info().Str("model", cfg.AdvisorModel).Msg("advisor enabled")
	}

	var workers sync.WaitGroup
	switch {
	case cfg.workerEnabled():
		fetcher, err := newR2Fetcher(ctx, cfg.R2)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating R2 client")
		}
		svc.Fetcher = fetcher
		workers.Add(1)
		go func() {
			defer workers.Done()
			log.Info().Int("workers", cfg.Workers).Str("queue", analysesQueue).Msg("starting consumer pool")
			svc.StartConsumerWorkerPool(ctx, cfg.Workers)
		}()
	case cfg.RabbitMQURL != "" && cfg.Workers > 0:
		log.Warn().
			Str("missing", strings.Join(cfg.missingR2(), ",")).
			Msg("queue worker disabled: incomplete R2 settings")
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           svc.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}

	workers.Wait()
	log.Info().Msg("shutdown complete")
}
