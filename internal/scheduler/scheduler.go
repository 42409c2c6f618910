package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockLens/internal/collector"
	"StockLens/internal/education"
	"StockLens/internal/notifier"
	"StockLens/internal/portfolio"
	"StockLens/internal/recorder"
)

// Scheduler manages all cron tasks and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Library   *education.Library
	Watchlist []string
	Ctx       context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, rec recorder.Recorder, lib *education.Library, watchlist []string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Library:   lib,
		Watchlist: watchlist,
		Ctx:       ctx,
		now:       time.Now,
	}
}

// RegisterAll registers the watchlist scan and the cache warm-up tasks.
func (s *Scheduler) RegisterAll(scanCron, warmCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if warmCron != "" {
		if _, err := s.Cron.AddFunc(warmCron, s.warmTask); err != nil {
			return fmt.Errorf("register warm task: %w", err)
		}
	}
	return nil
}

// RegisterSessionPrune closes sessions idle for longer than maxIdle.
func (s *Scheduler) RegisterSessionPrune(spec string, store *portfolio.Store, maxIdle time.Duration) error {
	if _, err := s.Cron.AddFunc(spec, func() {
		if n := store.Prune(maxIdle); n > 0 {
			log.Info().Int("sessions", n).Dur("max_idle", maxIdle).Msg("pruned idle sessions")
		}
	}); err != nil {
		return fmt.Errorf("register session prune: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan task immediately (for RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	log.Info().Strs("watchlist", s.Watchlist).Msg("running watchlist scan")
	s.trySend(s.scan(s.Ctx))
}

// scan analyzes the watchlist, records every analysis and returns the digest.
func (s *Scheduler) scan(ctx context.Context) string {
	analyses, failures := s.Collector.CollectMany(ctx, s.Watchlist)
	for sym, err := range failures {
		log.Error().Err(err).Str("symbol", sym).Msg("scan failed")
	}
	for _, a := range analyses {
		if err := s.Recorder.RecordAnalysis(a); err != nil {
			log.Error().Err(err).Str("symbol", a.Symbol).Msg("record analysis")
		}
	}
	log.Info().Int("ok", len(analyses)).Int("failed", len(failures)).Msg("watchlist scan done")
	return notifier.FormatDigest(analyses, failures, s.now())
}

func (s *Scheduler) warmTask() {
	start := time.Now()
	if err := s.Collector.Warm(s.Ctx, s.Watchlist); err != nil {
		log.Warn().Err(err).Msg("cache warm-up incomplete")
		return
	}
	log.Info().Int("symbols", len(s.Watchlist)).Dur("took", time.Since(start)).Msg("cache warmed")
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
