package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"StockLens/internal/api"
	"StockLens/internal/cache"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/education"
	"StockLens/internal/logger"
	"StockLens/internal/metrics"
	"StockLens/internal/notifier"
	"StockLens/internal/portfolio"
	"StockLens/internal/recorder"
	"StockLens/internal/scheduler"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if _, err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}
	log.Info().Str("profile", cfg.Profile).Strs("watchlist", cfg.Watchlist).Msg("StockLens starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	seriesCache := newCache(ctx, cfg)
	defer seriesCache.Close()

	prof, err := cfg.ResolveProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("resolve profile")
	}
	col := collector.NewCollector(fetcher, prof,
		collector.WithCache(seriesCache, cfg.Cache.TTL),
		collector.WithMetrics(m),
		collector.WithConcurrency(cfg.Collector.Concurrency),
	)

	if err := ensureDir(cfg.Sessions.StateFile); err != nil {
		log.Fatal().Err(err).Msg("create session dir")
	}
	sessions, err := portfolio.NewStore(cfg.Sessions.StateFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init session store")
	}

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		if err := ensureDir(cfg.Database.SQLitePath); err != nil {
			log.Warn().Err(err).Msg("create database dir")
		}
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	lib, err := education.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load education content")
	}

	// Init Telegram notifier
	var (
		notify notifier.Notifier = notifier.NoopNotifier{}
		tn     *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, m)
		if err != nil {
			log.Fatal().Err(err).Msg("init telegram")
		}
		notify = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications disabled")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, notify, rec, lib, cfg.Watchlist)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.WarmCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	if err := sched.RegisterSessionPrune(cfg.Schedule.SessionPruneCron, sessions, cfg.Sessions.MaxIdle); err != nil {
		log.Fatal().Err(err).Msg("register session prune")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	srv := api.NewServer(api.NewHandler(col, sessions, lib, rec), m,
		api.WithHost(cfg.HTTP.Host),
		api.WithPort(cfg.HTTP.Port),
		api.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout),
	)
	srv.Start()

	if cfg.RunOnStart {
		log.Info().Msg("run_on_start enabled, scanning watchlist now")
		go sched.RunScanNow()
	}

	log.Info().Msg("StockLens is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("StockLens stopped")
}

// newCache builds the in-process cache, layered over Redis when configured.
func newCache(ctx context.Context, cfg *config.Config) cache.Service {
	memOpts := []cache.MemoryOption{
		cache.WithMemoryMaxSize(cfg.Cache.MaxSize),
		cache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
	}
	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemoryCache(memOpts...)
	}
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisAddr(cfg.Cache.RedisAddr),
		cache.WithRedisPassword(cfg.Cache.RedisPassword),
		cache.WithRedisDB(cfg.Cache.RedisDB),
		cache.WithRedisPrefix(cfg.Cache.RedisPrefix),
	)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unavailable, using memory cache only")
		return cache.NewMemoryCache(memOpts...)
	}
	log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("redis cache connected")
	return cache.NewLayeredCache(rc, cfg.Cache.MemoryTTL, memOpts...)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
