package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockLens/internal/cache"
	"StockLens/internal/calculator"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/profile"
	"StockLens/internal/strategy"
)

// ErrFetch marks failures of the upstream data provider.
var ErrFetch = errors.New("fetch")

// DefaultCacheTTL matches how long a fetched series is considered fresh.
const DefaultCacheTTL = 5 * time.Minute

// Collector fetches series through the cache and turns them into analyses
// using the active profile.
type Collector struct {
	fetcher     Fetcher
	profile     profile.Profile
	cache       cache.Service
	cacheTTL    time.Duration
	metrics     *metrics.Metrics
	concurrency int
}

// Option configures a Collector.
type Option func(*Collector)

// WithCache sets the series cache and its TTL.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(col *Collector) {
		col.cache = c
		if ttl > 0 {
			col.cacheTTL = ttl
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(col *Collector) { col.metrics = m }
}

// WithConcurrency bounds CollectMany fan-out.
func WithConcurrency(n int) Option {
	return func(col *Collector) {
		if n > 0 {
			col.concurrency = n
		}
	}
}

// NewCollector creates a Collector for the given fetcher and profile.
func NewCollector(fetcher Fetcher, p profile.Profile, opts ...Option) *Collector {
	c := &Collector{
		fetcher:     fetcher,
		profile:     p,
		cacheTTL:    DefaultCacheTTL,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile returns the active profile.
func (c *Collector) Profile() profile.Profile { return c.profile }

// Series returns the bars for symbol, served from the cache when fresh.
func (c *Collector) Series(ctx context.Context, symbol string, rng Range, interval Interval) (model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.PriceSeries{}, errors.New("empty symbol")
	}
	key := cache.SeriesKey(c.fetcher.Name(), symbol, string(rng), string(interval))

	if c.cache != nil {
		var cached model.PriceSeries
		err := c.cache.Get(ctx, key, &cached)
		if err == nil {
			c.metrics.CacheHit()
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("series cache read failed")
		}
		c.metrics.CacheMiss()
	}

	start := time.Now()
	series, err := c.fetcher.FetchSeries(ctx, symbol, rng, interval)
	c.metrics.ObserveFetch(c.fetcher.Name(), start, err)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("%w %s: %w", ErrFetch, symbol, err)
	}
	log.Debug().Str("symbol", symbol).Str("provider", c.fetcher.Name()).
		Int("bars", series.Len()).Dur("took", time.Since(start)).Msg("series fetched")

	if c.cache != nil {
		// series containing NaN fields can't be JSON encoded; they are simply not cached
		if err := c.cache.Set(ctx, key, series, c.cacheTTL); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("series not cached")
		}
	}
	return series, nil
}

// Analyze fetches a series and computes indicators, price summary and insights.
func (c *Collector) Analyze(ctx context.Context, symbol string, rng Range, interval Interval) (*model.Analysis, error) {
	series, err := c.Series(ctx, symbol, rng, interval)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	frame, err := calculator.Compute(series, c.profile.Indicators)
	c.metrics.ObserveCompute(start)
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", series.Symbol, err)
	}
	for _, issue := range frame.Issues {
		c.metrics.IndicatorIssue(issue.Indicator)
		log.Warn().Str("symbol", series.Symbol).Str("indicator", issue.Indicator).
			Err(issue.Err).Msg("indicator unavailable")
	}

	return &model.Analysis{
		Symbol:     series.Symbol,
		Profile:    c.profile.Name,
		Series:     &series,
		Summary:    summarize(series),
		Frame:      frame,
		Assessment: strategy.Evaluate(series, frame),
	}, nil
}

// Collect analyzes one year of daily bars.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Analysis, error) {
	return c.Analyze(ctx, symbol, Range1Y, IntervalDaily)
}

// CollectMany analyzes symbols concurrently. Failures are reported per
// symbol; successful analyses keep the input order.
func (c *Collector) CollectMany(ctx context.Context, symbols []string) ([]*model.Analysis, map[string]error) {
	results := make([]*model.Analysis, len(symbols))
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			a, err := c.Collect(gctx, sym)
			if err != nil {
				mu.Lock()
				failed[sym] = err
				mu.Unlock()
				return nil
			}
			results[i] = a
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*model.Analysis, 0, len(symbols))
	for _, a := range results {
		if a != nil {
			out = append(out, a)
		}
	}
	return out, failed
}

// Warm pre-fetches symbols into the cache.
func (c *Collector) Warm(ctx context.Context, symbols []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	var mu sync.Mutex
	var errs []error
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			if _, err := c.Series(gctx, sym, Range1Y, IntervalDaily); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// LatestPrices returns the last close of each symbol that could be fetched.
func (c *Collector) LatestPrices(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		series, err := c.Series(ctx, sym, Range1M, IntervalDaily)
		if err != nil {
			log.Warn().Err(err).Str("symbol", sym).Msg("price lookup failed")
			continue
		}
		if last, ok := series.Last(); ok {
			prices[strings.ToUpper(sym)] = last.Close
		}
	}
	return prices
}

func summarize(series model.PriceSeries) model.PriceSummary {
	var s model.PriceSummary
	last, ok := series.Last()
	if !ok {
		return s
	}
	s.Current = last.Close
	if n := series.Len(); n > 1 {
		prev := series.Bars[n-2].Close
		s.Change = last.Close - prev
		if prev != 0 {
			s.ChangePct = s.Change / prev * 100
		}
	}

	if h, l, err := calculator.Range(series, calculator.Lookback52Week); err != nil {
		log.Warn().Err(err).Str("symbol", series.Symbol).Msg("52-week range unavailable")
		s.High52w, s.Low52w = s.Current, s.Current
	} else {
		s.High52w, s.Low52w = h, l
	}
	if h, l, err := calculator.Range(series, calculator.Lookback30Day); err != nil {
		s.High30d, s.Low30d = s.Current, s.Current
	} else {
		s.High30d, s.Low30d = h, l
	}
	if pos, err := calculator.Position(s.Current, s.High52w, s.Low52w); err != nil {
		s.Position52w = 0.5
	} else {
		s.Position52w = pos
	}
	return s
}
