package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/config"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/history"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/pipeline"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/source"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/logger"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/cache"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/notifier"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/publisher"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("crawl_interval", cfg.CrawlInterval).
		Int("min_discount", cfg.MinDiscount).
		Int("max_offers_send", cfg.MaxOffersSend).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize the history store; unreadable state never blocks a run
	hist := history.NewStore(cfg.HistoryFile, cfg.HistoryWindow)
	if err := hist.Load(time.Now()); err != nil {
		log.Warn().Err(err).Msg("History unreadable, starting empty")
	}
	log.Info().Int("entries", hist.Len()).Str("file", hist.Path()).Msg("History loaded")

	// Initialize the rate-limit cache and the listing source
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	listingSource := source.NewAmazonSource(cacheService, cfg.MaxCardsPerPage, cfg.BlockTime)

	// Initialize the Telegram notifier
	telegram := notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)

	// Initialize the optional Redis stream mirror
	var mirror publisher.Publisher
	if cfg.RedisAddr != "" {
		redisMirror := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		defer redisMirror.Close()
		mirror = redisMirror

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	// Create the pipeline
	p := pipeline.New(
		pipeline.Config{
			SearchURLs:    cfg.SearchURLs,
			MinDiscount:   cfg.MinDiscount,
			MaxOffersSend: cfg.MaxOffersSend,
			AffiliateTag:  cfg.AffiliateTag,
		},
		listingSource,
		hist,
		telegram,
		mirror,
	)

	// Create and start worker
	w := worker.NewWorker(ctx, p, cfg.CrawlInterval)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting offer worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}
