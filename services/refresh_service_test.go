package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/Kevinjiang991217/stock-dashboard/services/analysis"
	"github.com/Kevinjiang991217/stock-dashboard/services/fx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	text string
	err  error
}

func (s *stubAnalyzer) Generate(ctx context.Context, stocks models.StockBook, gold *models.GoldData, items []models.NewsItem) (string, error) {
	return s.text, s.err
}

func TestRefreshExchangeRateKeepsCachedValueOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cache := NewMarketCache()
	rs := NewRefreshService(nil, fx.NewClient(server.URL, time.Second), nil, nil, cache, nil)

	before := cache.ExchangeRate()

	// two consecutive failures must leave the singleton untouched
	rs.RefreshExchangeRate(context.Background())
	rs.RefreshExchangeRate(context.Background())

	after := cache.ExchangeRate()
	assert.Equal(t, before.Rate, after.Rate)
	assert.Equal(t, before.Timestamp, after.Timestamp)
}

func TestRefreshExchangeRateStoresFreshRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"CNY":7.1234}}`))
	}))
	defer server.Close()

	cache := NewMarketCache()
	rs := NewRefreshService(nil, fx.NewClient(server.URL, time.Second), nil, nil, cache, nil)

	rs.RefreshExchangeRate(context.Background())
	assert.Equal(t, 7.1234, cache.ExchangeRate().Rate)
}

func TestRegenerateAnalysisFallbackLeavesCacheUntouched(t *testing.T) {
	cache := NewMarketCache()
	cache.SetAnalysis("previous complete brief")
	before := cache.Analysis()

	rs := NewRefreshService(nil, nil, nil, &stubAnalyzer{err: errors.New("provider down")}, cache, nil)

	got := rs.RegenerateAnalysis(context.Background())
	assert.Equal(t, analysis.FallbackText, got)

	after := cache.Analysis()
	assert.Equal(t, before.Analysis, after.Analysis)
	assert.Equal(t, before.Timestamp, after.Timestamp)
}

func TestRegenerateAnalysisStoresSuccessfulBrief(t *testing.T) {
	cache := NewMarketCache()
	rs := NewRefreshService(nil, nil, nil, &stubAnalyzer{text: "黄金走强，美股震荡。"}, cache, nil)

	got := rs.RegenerateAnalysis(context.Background())
	require.Equal(t, "黄金走强，美股震荡。", got)

	brief := cache.Analysis()
	assert.Equal(t, "黄金走强，美股震荡。", brief.Analysis)
	assert.NotZero(t, brief.Timestamp)
}
