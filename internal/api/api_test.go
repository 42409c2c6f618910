package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"StockLens/internal/collector"
	"StockLens/internal/education"
	"StockLens/internal/metrics"
	"StockLens/internal/model"
	"StockLens/internal/portfolio"
	"StockLens/internal/profile"
	"StockLens/internal/recorder"
)

var testEnd = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, fetcher collector.Fetcher, profileName string) *Server {
	t.Helper()
	p, err := profile.Lookup(profileName)
	if err != nil {
		t.Fatal(err)
	}
	lib, err := education.Load()
	if err != nil {
		t.Fatal(err)
	}
	store, err := portfolio.NewStore(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatal(err)
	}
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "stocklens.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rec.Close() })

	m := metrics.New()
	col := collector.NewCollector(fetcher, p, collector.WithMetrics(m))
	return NewServer(NewHandler(col, store, lib, rec), m)
}

func mockServer(t *testing.T) *Server {
	return newTestServer(t, &collector.MockFetcher{Price: 100, End: testEnd}, profile.Advanced)
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNoContent && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v\n%s", err, raw)
	}
	return v
}

func TestHealthz(t *testing.T) {
	rec, env := do(t, mockServer(t), "GET", "/healthz", "")
	if rec.Code != 200 || env.Status != 200 || !strings.Contains(string(env.Data), "ok") {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestGetProfile(t *testing.T) {
	_, env := do(t, mockServer(t), "GET", "/api/profile", "")
	data := decode[struct {
		Profile   profile.Profile `json:"profile"`
		Columns   []string        `json:"columns"`
		Available []string        `json:"available"`
	}](t, env.Data)
	if data.Profile.Name != profile.Advanced || len(data.Available) != 4 {
		t.Errorf("unexpected profile response %+v", data)
	}
	if !contains(data.Columns, "MACD_Signal") {
		t.Errorf("columns missing MACD_Signal: %v", data.Columns)
	}
}

func TestGetIndicators(t *testing.T) {
	rec, env := do(t, mockServer(t), "GET", "/api/stocks/aapl/indicators", "")
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	data := decode[struct {
		Symbol string           `json:"symbol"`
		Range  string           `json:"range"`
		Bars   []model.PriceBar `json:"bars"`
		Frame  struct {
			Order   []string              `json:"order"`
			Columns map[string][]*float64 `json:"columns"`
		} `json:"frame"`
	}](t, env.Data)
	if data.Symbol != "AAPL" || data.Range != "1y" {
		t.Errorf("unexpected header %s %s", data.Symbol, data.Range)
	}
	sma := data.Frame.Columns["SMA_20"]
	if len(sma) != len(data.Bars) {
		t.Fatalf("SMA_20 has %d rows for %d bars", len(sma), len(data.Bars))
	}
	if sma[0] != nil || sma[len(sma)-1] == nil {
		t.Error("expected null warm-up and a defined last value")
	}
}

func TestGetIndicators_LenientShortHistory(t *testing.T) {
	rec, env := do(t, mockServer(t), "GET", "/api/stocks/AAPL/indicators?range=1mo", "")
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(string(env.Data), `"issues"`) {
		t.Error("expected issues for a one month series")
	}
}

func TestGetIndicators_StrictShortHistory(t *testing.T) {
	rec, env := do(t, mockServer(t), "GET", "/api/stocks/AAPL/indicators?range=1mo&strict=true", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
	errs := decode[[]AppError](t, env.Data)
	if len(errs) != 1 || errs[0].Code != "ERR_INSUFFICIENT_DATA" || errs[0].Params["have"] != float64(22) {
		t.Errorf("unexpected error body %+v", errs)
	}
}

func TestGetIndicators_Malformed(t *testing.T) {
	bad := model.PriceSeries{Bars: []model.PriceBar{
		{Time: testEnd.Add(-24 * time.Hour), Open: 10, High: 11, Low: 9, Close: 10, Volume: 100},
		{Time: testEnd, Open: 10, High: 11, Low: 9, Close: -1, Volume: 100},
	}}
	s := newTestServer(t, &collector.MockFetcher{Series: &bad}, profile.Basic)
	rec, env := do(t, s, "GET", "/api/stocks/X/indicators", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
	errs := decode[[]AppError](t, env.Data)
	if errs[0].Code != "ERR_MALFORMED_SERIES" || errs[0].Params["index"] != float64(1) {
		t.Errorf("unexpected error body %+v", errs)
	}
}

func TestGetIndicators_BadQuery(t *testing.T) {
	rec, env := do(t, mockServer(t), "GET", "/api/stocks/AAPL/indicators?range=10y", "")
	if rec.Code != 400 {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	errs := decode[[]ValidationError](t, env.Data)
	if len(errs) != 1 || errs[0].Field != "range" || errs[0].Code != "ERR_ONEOF" {
		t.Errorf("unexpected validation errors %+v", errs)
	}
}

func TestGetIndicators_UpstreamFailure(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{Err: http.ErrHandlerTimeout}, profile.Basic)
	rec, _ := do(t, s, "GET", "/api/stocks/AAPL/indicators", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status %d, want 502", rec.Code)
	}
}

func TestAnalysisAndHistory(t *testing.T) {
	s := mockServer(t)
	rec, env := do(t, s, "GET", "/api/stocks/MSFT/analysis", "")
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	a := decode[struct {
		Symbol     string           `json:"symbol"`
		Assessment model.Assessment `json:"assessment"`
	}](t, env.Data)
	if a.Symbol != "MSFT" || a.Assessment.Outlook.Label == "" || len(a.Assessment.Factors) != 6 {
		t.Errorf("unexpected analysis %+v", a)
	}

	_, env = do(t, s, "GET", "/api/stocks/msft/history?limit=5", "")
	hist := decode[[]recorder.AnalysisRecord](t, env.Data)
	if len(hist) != 1 || hist[0].Outlook != a.Assessment.Outlook.Label {
		t.Errorf("unexpected history %+v", hist)
	}
}

func TestLearn(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{Price: 100, End: testEnd}, profile.Basic)

	_, env := do(t, s, "GET", "/api/learn", "")
	topics := decode[[]education.Topic](t, env.Data)
	if len(topics) != 5 {
		t.Fatalf("basic profile should list 5 topics, got %d", len(topics))
	}
	if len(topics[0].Sections) != 0 {
		t.Error("topic list should omit sections")
	}

	rec, env := do(t, s, "GET", "/api/learn/risk", "")
	if rec.Code != 200 || len(decode[education.Topic](t, env.Data).Sections) == 0 {
		t.Errorf("expected full risk topic, got %d", rec.Code)
	}

	if rec, _ := do(t, s, "GET", "/api/learn/indicators", ""); rec.Code != 404 {
		t.Errorf("indicators is not in the basic profile, got %d", rec.Code)
	}
	if rec, _ := do(t, s, "GET", "/api/learn/astrology", ""); rec.Code != 404 {
		t.Errorf("unknown topic should 404, got %d", rec.Code)
	}
}

func TestOptionPayoff(t *testing.T) {
	rec, env := do(t, mockServer(t), "POST", "/api/tools/options",
		`{"type":"call","action":"buy","strike":100,"premium":5}`)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	p := decode[education.Payoff](t, env.Data)
	if p.BreakEven != 105 || p.MaxProfit != nil || p.MaxLoss == nil || *p.MaxLoss != -500 {
		t.Errorf("unexpected payoff %+v", p)
	}
	if len(p.Points) != 61 || p.Points[0].Price != 70 || p.Points[60].Price != 130 {
		t.Errorf("unexpected grid: %d points", len(p.Points))
	}
	if p.CurrentPrice != 100 || p.CurrentProfitLoss != -500 {
		t.Errorf("current P/L at the strike = %v @ %v, want -500 @ 100", p.CurrentProfitLoss, p.CurrentPrice)
	}

	rec, env = do(t, mockServer(t), "POST", "/api/tools/options",
		`{"type":"call","action":"buy","strike":100,"premium":5,"current_price":110}`)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if p := decode[education.Payoff](t, env.Data); p.CurrentProfitLoss != 500 {
		t.Errorf("current P/L at 110 = %v, want 500", p.CurrentProfitLoss)
	}

	rec, _ = do(t, mockServer(t), "POST", "/api/tools/options", `{"type":"straddle","action":"buy","strike":100,"premium":5}`)
	if rec.Code != 400 {
		t.Errorf("bad option type should be rejected, got %d", rec.Code)
	}
	rec, _ = do(t, mockServer(t), "POST", "/api/tools/options", `{"type":"put","action":"buy","strike":100,"premium":5,"low":1.2,"high":0.8}`)
	if rec.Code != 400 {
		t.Errorf("inverted grid should be rejected, got %d", rec.Code)
	}
}

func TestRiskPlan(t *testing.T) {
	rec, env := do(t, mockServer(t), "POST", "/api/tools/risk", `{"portfolio_value":10000}`)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	plan := decode[education.RiskPlan](t, env.Data)
	if plan.RiskAmount != 100 || plan.PositionSize != 2000 || plan.Input.MaxPositions != 5 {
		t.Errorf("unexpected plan %+v", plan)
	}

	rec, _ = do(t, mockServer(t), "POST", "/api/tools/risk", `{"portfolio_value":0}`)
	if rec.Code != 400 {
		t.Errorf("zero portfolio should be rejected, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := mockServer(t)

	rec, env := do(t, s, "POST", "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("open: status %d", rec.Code)
	}
	id := decode[model.SessionState](t, env.Data).ID
	base := "/api/sessions/" + id

	rec, env = do(t, s, "POST", base+"/positions", `{"symbol":"aapl","shares":10,"price":90}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add position: %d %s", rec.Code, rec.Body.String())
	}
	if pos := decode[model.Position](t, env.Data); pos.Symbol != "AAPL" || pos.TotalCost != 900 {
		t.Errorf("unexpected position %+v", pos)
	}

	rec, _ = do(t, s, "POST", base+"/positions", `{"symbol":"MSFT","shares":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add priced-at-market position: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, s, "POST", base+"/positions", `{"symbol":"MSFT","shares":0}`)
	if rec.Code != 400 {
		t.Errorf("zero shares should be rejected, got %d", rec.Code)
	}

	_, env = do(t, s, "GET", base+"/portfolio", "")
	v := decode[model.PortfolioValuation](t, env.Data)
	if len(v.Positions) != 2 || !v.Positions[0].Priced || v.CurrentValue <= 0 {
		t.Errorf("unexpected valuation %+v", v)
	}

	_, env = do(t, s, "POST", base+"/watchlist", `{"symbols":["nvda","spy","NVDA"]}`)
	if wl := decode[watchlistResponse](t, env.Data); strings.Join(wl.Watchlist, ",") != "NVDA,SPY" {
		t.Errorf("unexpected watchlist %v", wl.Watchlist)
	}
	rec, _ = do(t, s, "POST", base+"/watchlist", `{"symbols":[]}`)
	if rec.Code != 400 {
		t.Errorf("empty symbols should be rejected, got %d", rec.Code)
	}

	_, env = do(t, s, "GET", base+"/watchlist", "")
	scan := decode[watchlistScan](t, env.Data)
	if len(scan.Entries) != 2 || scan.Entries[0].Symbol != "NVDA" {
		t.Errorf("unexpected scan %+v", scan)
	}

	_, env = do(t, s, "DELETE", base+"/watchlist/spy", "")
	if wl := decode[watchlistResponse](t, env.Data); len(wl.Watchlist) != 1 {
		t.Errorf("unexpected watchlist after delete %v", wl.Watchlist)
	}

	if rec, _ := do(t, s, "DELETE", base+"/positions/aapl", ""); rec.Code != http.StatusNoContent {
		t.Errorf("remove position: %d", rec.Code)
	}
	if rec, _ := do(t, s, "DELETE", base+"/positions/aapl", ""); rec.Code != 404 {
		t.Errorf("second remove should 404, got %d", rec.Code)
	}

	if rec, _ := do(t, s, "DELETE", base, ""); rec.Code != http.StatusNoContent {
		t.Errorf("close: %d", rec.Code)
	}
	if rec, _ := do(t, s, "GET", base, ""); rec.Code != 404 {
		t.Errorf("closed session should 404, got %d", rec.Code)
	}
	if rec, _ := do(t, s, "POST", base+"/positions", `{"symbol":"AAPL","shares":1,"price":1}`); rec.Code != 404 {
		t.Errorf("position on closed session should 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := mockServer(t)
	do(t, s, "GET", "/healthz", "")
	rec, _ := do(t, s, "GET", "/metrics", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `stocklens_http_requests_total{code="200",method="GET",route="/healthz"} 1`) {
		t.Errorf("metrics missing request counter:\n%s", rec.Body.String())
	}
}

func TestRecoverAndNotFound(t *testing.T) {
	s := mockServer(t)
	s.Echo().GET("/boom", func(c echo.Context) error { panic("boom") })

	rec, env := do(t, s, "GET", "/boom", "")
	if rec.Code != 500 || env.Status != 500 {
		t.Errorf("panic should yield 500, got %d", rec.Code)
	}

	rec, env = do(t, s, "GET", "/nope", "")
	if rec.Code != 404 || env.Status != 404 {
		t.Errorf("unknown route should yield 404 envelope, got %d %s", rec.Code, rec.Body.String())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestNewServer_Options(t *testing.T) {
	s := NewServer(nil, nil, WithHost("127.0.0.1"), WithPort(9099), WithTimeouts(time.Second, 2*time.Second))
	if s.config.Host != "127.0.0.1" || s.config.Port != 9099 {
		t.Errorf("unexpected listen config %+v", s.config)
	}
	if s.Echo().Server.ReadTimeout != time.Second || s.Echo().Server.WriteTimeout != 2*time.Second {
		t.Error("timeouts not applied to the http server")
	}
}

func TestQuiz(t *testing.T) {
	s := mockServer(t)

	rec, env := do(t, s, "GET", "/api/tools/quiz", "")
	if rec.Code != 200 {
		t.Fatalf("status %d", rec.Code)
	}
	if qs := decode[[]education.Question](t, env.Data); len(qs) != 5 || len(qs[0].Options) != 4 {
		t.Errorf("unexpected question list %+v", qs)
	}
	if strings.Contains(string(env.Data), "correct") {
		t.Error("question list must not reveal answers")
	}

	rec, env = do(t, s, "POST", "/api/tools/quiz", `{"answers":[1,0,1,0,0]}`)
	if rec.Code != 200 {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[education.QuizResult](t, env.Data)
	if res.Score != 3 || res.Percentage != 60 || res.Grade != "good" {
		t.Errorf("unexpected result %+v", res)
	}

	if rec, _ := do(t, s, "POST", "/api/tools/quiz", `{"answers":[1,0,1,0,0,1]}`); rec.Code != 400 {
		t.Errorf("too many answers should 400, got %d", rec.Code)
	}
	if rec, _ := do(t, s, "POST", "/api/tools/quiz", `{"answers":[9]}`); rec.Code != 400 {
		t.Errorf("unknown option should 400, got %d", rec.Code)
	}
	if rec, _ := do(t, s, "POST", "/api/tools/quiz", `{"answers":[-3]}`); rec.Code != 400 {
		t.Errorf("negative answer should fail validation, got %d", rec.Code)
	}
}
