package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"

	"github.com/guttosm/stockpulse/internal/domain/dto"
	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/service"
)

type mockQueryService struct {
	res  models.QueryResult
	last models.QueryRequest
	hits int
}

func (m *mockQueryService) Query(_ context.Context, req models.QueryRequest) models.QueryResult {
	m.hits++
	m.last = req
	res := m.res
	res.Symbol, res.Mode = req.Symbol, req.Mode
	return res
}

var _ service.QueryService = (*mockQueryService)(nil)

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleBars() []models.EnrichedBar {
	return []models.EnrichedBar{
		{
			CanonicalBar:     models.CanonicalBar{Date: day("2024-01-02"), Open: 10, High: 12, Low: 9, Close: 11, Volume: 1000},
			ChangePct:        null.FloatFrom(10),
			TurnoverEstimate: 10500,
			MarketCap:        null.FloatFrom(1100),
		},
		{
			CanonicalBar:     models.CanonicalBar{Date: day("2024-01-03"), Open: 11, High: 13, Low: 10, Close: 12, Volume: 500},
			ChangePct:        null.FloatFrom(100.0 / 11),
			TurnoverEstimate: 5750,
			MarketCap:        null.FloatFrom(1200),
		},
	}
}

func success(bars []models.EnrichedBar, est models.ShareCountEstimate) models.QueryResult {
	return models.QueryResult{Kind: models.ResultSuccess, Bars: bars, Shares: est}
}

func setupRouterWithMock(s service.QueryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, "yahoo")
	h.now = func() time.Time { return time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC) }
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/quote", h.GetQuote)
	v1.GET("/report", h.GetReport)
	v1.GET("/report/export", h.ExportReport)
	return r
}

func TestHandler_StatusMapping(t *testing.T) {
	est := models.ShareCountEstimate{TotalShares: null.IntFrom(100), Source: models.SourceLiveLookup}

	cases := []struct {
		name     string
		res      models.QueryResult
		query    string
		status   int
		wantHits int
		wantKind string
	}{
		{name: "missing symbol", query: "/api/v1/quote", status: http.StatusBadRequest, wantKind: "invalid_request"},
		{name: "bad date", query: "/api/v1/quote?symbol=ZBAO&date=2024/01/05", status: http.StatusBadRequest},
		{name: "bad start", query: "/api/v1/report?symbol=ZBAO&start=jan", status: http.StatusBadRequest},
		{name: "bad end", query: "/api/v1/report?symbol=ZBAO&end=2024-13-01", status: http.StatusBadRequest},
		{name: "bad override", query: "/api/v1/quote?symbol=ZBAO&total_shares=lots", status: http.StatusBadRequest},
		{name: "bad float override", query: "/api/v1/report?symbol=ZBAO&float_shares=1.5", status: http.StatusBadRequest},
		{name: "bad format", query: "/api/v1/report/export?symbol=ZBAO&format=xlsx", status: http.StatusBadRequest},
		{
			name:     "empty is 404",
			res:      models.QueryResult{Kind: models.ResultEmpty, ErrorKind: models.ErrNoTradingData, Message: "nothing"},
			query:    "/api/v1/quote?symbol=ZBAO&date=2024-01-06",
			status:   http.StatusNotFound,
			wantHits: 1,
			wantKind: "no_trading_data",
		},
		{
			name:     "data source error is 502",
			res:      models.QueryResult{Kind: models.ResultFailure, ErrorKind: models.ErrDataSource, Message: "down"},
			query:    "/api/v1/report?symbol=ZBAO",
			status:   http.StatusBadGateway,
			wantHits: 1,
			wantKind: "data_source_error",
		},
		{
			name:     "service validation is 400",
			res:      models.QueryResult{Kind: models.ResultFailure, ErrorKind: models.ErrInvalidRequest, Message: "start after end"},
			query:    "/api/v1/report?symbol=ZBAO&start=2024-02-01&end=2024-01-01",
			status:   http.StatusBadRequest,
			wantHits: 1,
			wantKind: "invalid_request",
		},
		{
			name:     "export failure skips encoding",
			res:      models.QueryResult{Kind: models.ResultEmpty, ErrorKind: models.ErrNoTradingData},
			query:    "/api/v1/report/export?symbol=ZBAO&format=csv",
			status:   http.StatusNotFound,
			wantHits: 1,
		},
		{name: "quote ok", res: success(sampleBars()[:1], est), query: "/api/v1/quote?symbol=zbao&date=2024-01-02", status: http.StatusOK, wantHits: 1},
		{name: "report ok", res: success(sampleBars(), est), query: "/api/v1/report?symbol=zbao", status: http.StatusOK, wantHits: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockQueryService{res: tc.res}
			r := setupRouterWithMock(svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.query, nil))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d body=%s", tc.status, w.Code, w.Body.String())
			}
			if svc.hits != tc.wantHits {
				t.Fatalf("expected %d service calls, got %d", tc.wantHits, svc.hits)
			}
			if tc.wantKind != "" {
				var out dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
					t.Fatalf("invalid json: %v", err)
				}
				if out.Kind != tc.wantKind || out.Message == "" {
					t.Fatalf("unexpected error body: %+v", out)
				}
			}
		})
	}
}

func TestGetQuote_RequestAndBody(t *testing.T) {
	svc := &mockQueryService{res: success(sampleBars()[:1], models.Unresolved())}
	r := setupRouterWithMock(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quote?symbol=zbao&date=2024-01-02&total_shares=33,270,000", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.last.Symbol != "ZBAO" || svc.last.Mode != models.ModeSingleDay || !svc.last.Date.Equal(day("2024-01-02")) {
		t.Fatalf("unexpected request: %+v", svc.last)
	}
	if svc.last.ManualTotal == nil || *svc.last.ManualTotal != 33_270_000 || svc.last.ManualFloat != nil {
		t.Fatalf("overrides not parsed: %+v", svc.last)
	}

	var out struct {
		Symbol          string         `json:"symbol"`
		RequestedDate   string         `json:"requested_date"`
		Bar             map[string]any `json:"bar"`
		MarketCapStatus string         `json:"market_cap_status"`
		DataSource      string         `json:"data_source"`
		Shares          struct {
			TotalShares *int64 `json:"total_shares"`
			Source      string `json:"source"`
		} `json:"shares"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Symbol != "ZBAO" || out.RequestedDate != "2024-01-02" || out.DataSource != "yahoo" {
		t.Fatalf("unexpected body: %+v", out)
	}
	if out.MarketCapStatus != dto.MarketCapUnavailable || out.Shares.TotalShares != nil || out.Shares.Source != "unresolved" {
		t.Fatalf("unresolved shares not surfaced: %+v", out)
	}
	if out.Bar["close"] != 11.0 || out.Bar["date"] != "2024-01-02" {
		t.Fatalf("unexpected bar: %+v", out.Bar)
	}
}

func TestGetQuote_DefaultsToYesterday(t *testing.T) {
	svc := &mockQueryService{res: success(sampleBars()[:1], models.Unresolved())}
	r := setupRouterWithMock(svc)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quote?symbol=ZBAO", nil))
	if !svc.last.Date.Equal(day("2024-02-09")) {
		t.Fatalf("want yesterday, got %v", svc.last.Date)
	}
}

func TestGetReport_DefaultRangeAndCloses(t *testing.T) {
	est := models.ShareCountEstimate{TotalShares: null.IntFrom(100), Source: models.SourceUserOverride}
	svc := &mockQueryService{res: success(sampleBars(), est)}
	r := setupRouterWithMock(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report?symbol=ZBAO", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !svc.last.Start.Equal(day("2024-01-11")) || !svc.last.End.Equal(day("2024-02-10")) {
		t.Fatalf("unexpected default range %v..%v", svc.last.Start, svc.last.End)
	}

	var out dto.ReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Start != "2024-01-11" || out.End != "2024-02-10" || len(out.Bars) != 2 {
		t.Fatalf("unexpected body: %+v", out)
	}
	if !out.Bars[0].Date.Equal(day("2024-01-02")) {
		t.Fatalf("bar dates must round-trip: %+v", out.Bars[0])
	}
	if len(out.Closes) != 2 || out.Closes[1].Date != "2024-01-03" || out.Closes[1].Close != 12 {
		t.Fatalf("unexpected closes: %+v", out.Closes)
	}
	if out.MarketCapStatus != "" || out.Shares.Source != "user_override" {
		t.Fatalf("unexpected shares: %+v status=%q", out.Shares, out.MarketCapStatus)
	}
}

func TestExportReport_Formats(t *testing.T) {
	cases := []struct {
		format      string
		contentType string
		filename    string
	}{
		{format: "", contentType: "text/csv", filename: "zbao_2024-01-02_2024-01-03.csv"},
		{format: "parquet", contentType: "application/vnd.apache.parquet", filename: "zbao_2024-01-02_2024-01-03.parquet"},
		{format: "json", contentType: "application/json", filename: "zbao_2024-01-02_2024-01-03.json"},
	}
	for _, tc := range cases {
		t.Run("format="+tc.format, func(t *testing.T) {
			svc := &mockQueryService{res: success(sampleBars(), models.Unresolved())}
			r := setupRouterWithMock(svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/report/export?symbol=ZBAO&start=2024-01-01&end=2024-01-31&format="+tc.format, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tc.contentType) {
				t.Fatalf("content type %q", ct)
			}
			if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, tc.filename) || !strings.HasPrefix(cd, "attachment") {
				t.Fatalf("content disposition %q", cd)
			}
			if w.Body.Len() == 0 {
				t.Fatalf("empty body")
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in      string
		want    *int64
		wantErr bool
	}{
		{in: ""},
		{in: "12", want: ptr(12)},
		{in: "33,270,000", want: ptr(33_270_000)},
		{in: "10_000", want: ptr(10_000)},
		{in: "-5", want: ptr(-5)},
		{in: "1e6", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseCount(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: err=%v", tc.in, err)
		}
		if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
			t.Fatalf("%q: got %v want %v", tc.in, got, tc.want)
		}
	}
}

func ptr(v int64) *int64 { return &v }
