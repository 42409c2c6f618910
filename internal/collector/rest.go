package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockLens/internal/calculator"
	"StockLens/internal/model"
)

// RESTFetcher implements Fetcher against a generic JSON bars API:
//
//	GET {base}/api/v1/bars/{daily|weekly|monthly}?symbol=X&limit=N
//
// Weekly and monthly bars fall back to aggregating daily bars when the
// provider has no such endpoint.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    *float64 `json:"volume"`
}

var intervalPath = map[Interval]string{
	IntervalDaily:   "daily",
	IntervalWeekly:  "weekly",
	IntervalMonthly: "monthly",
}

func (f *RESTFetcher) FetchSeries(ctx context.Context, symbol string, rng Range, interval Interval) (model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	path, ok := intervalPath[interval]
	if !ok {
		return model.PriceSeries{}, fmt.Errorf("rest: unsupported interval %q", interval)
	}

	bars, err := f.fetchBars(ctx, path, symbol, rng.Bars(interval))
	if err != nil && interval != IntervalDaily {
		daily, dailyErr := f.fetchBars(ctx, "daily", symbol, rng.Bars(IntervalDaily))
		if dailyErr != nil {
			return model.PriceSeries{}, fmt.Errorf("%s fetch failed: %w; daily fallback also failed: %w", path, err, dailyErr)
		}
		// aggregation assumes provider order is ascending
		if verr := calculator.ValidateSeries(model.PriceSeries{Symbol: symbol, Bars: daily}); verr != nil {
			return model.PriceSeries{}, fmt.Errorf("daily fallback for %s: %w", symbol, verr)
		}
		bars, err = aggregateBars(daily, interval), nil
	}
	if err != nil {
		return model.PriceSeries{}, err
	}

	return model.PriceSeries{
		Symbol:    symbol,
		Interval:  string(interval),
		Bars:      bars,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, path, symbol string, limit int) ([]model.PriceBar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/%s?symbol=%s&limit=%d", f.BaseURL, path, url.QueryEscape(symbol), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.PriceBar, len(raw))
	for i, rb := range raw {
		bars[i] = model.PriceBar{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   valueOrNaN(rb.Open),
			High:   valueOrNaN(rb.High),
			Low:    valueOrNaN(rb.Low),
			Close:  valueOrNaN(rb.Close),
			Volume: valueOrNaN(rb.Volume),
		}
	}
	return bars, nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// aggregateBars folds daily bars into ISO-week or calendar-month bars.
func aggregateBars(daily []model.PriceBar, interval Interval) []model.PriceBar {
	if len(daily) == 0 {
		return nil
	}
	bucket := func(t time.Time) int {
		if interval == IntervalMonthly {
			return t.Year()*100 + int(t.Month())
		}
		y, w := t.ISOWeek()
		return y*100 + w
	}

	var out []model.PriceBar
	cur := daily[0]
	curKey := bucket(cur.Time)
	for _, d := range daily[1:] {
		if k := bucket(d.Time); k != curKey {
			out = append(out, cur)
			cur, curKey = d, k
			continue
		}
		if d.High > cur.High {
			cur.High = d.High
		}
		if d.Low < cur.Low {
			cur.Low = d.Low
		}
		cur.Close = d.Close
		cur.Volume += d.Volume
	}
	return append(out, cur)
}
