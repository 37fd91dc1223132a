package services

import (
	"context"
	"log"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/Kevinjiang991217/stock-dashboard/services/analysis"
	"github.com/Kevinjiang991217/stock-dashboard/services/fx"
	"github.com/Kevinjiang991217/stock-dashboard/services/marketdata"
	"github.com/Kevinjiang991217/stock-dashboard/services/news"
)

// AnalysisGenerator generates a market brief from the current snapshot.
type AnalysisGenerator interface {
	Generate(ctx context.Context, stocks models.StockBook, gold *models.GoldData, items []models.NewsItem) (string, error)
}

// RefreshService drives cache population. Every step is fault isolated:
// a failing fetch logs and leaves that field at its previous value while
// the remaining steps still run.
type RefreshService struct {
	market   *marketdata.Service
	fx       *fx.Client
	news     *news.Service
	analyzer AnalysisGenerator
	cache    *MarketCache
	hub      *StreamHub
}

func NewRefreshService(market *marketdata.Service, fxClient *fx.Client, newsService *news.Service, analyzer AnalysisGenerator, cache *MarketCache, hub *StreamHub) *RefreshService {
	return &RefreshService{
		market:   market,
		fx:       fxClient,
		news:     newsService,
		analyzer: analyzer,
		cache:    cache,
		hub:      hub,
	}
}

func (rs *RefreshService) Cache() *MarketCache {
	return rs.cache
}

// FetchHistory proxies the history lookup; candles are never cached
// since the endpoint is chart-driven and called per symbol.
func (rs *RefreshService) FetchHistory(ctx context.Context, alias string) *models.HistorySeries {
	return rs.market.FetchHistory(ctx, alias)
}

// RefreshExchangeRate updates the USD->CNY rate. On failure the cached
// value is left untouched and the error never escapes this method.
func (rs *RefreshService) RefreshExchangeRate(ctx context.Context) {
	rate, err := rs.fx.Latest(ctx)
	if err != nil {
		log.Printf("Exchange rate fetch failed, keeping cached value: %v", err)
		return
	}
	rs.cache.SetExchangeRate(rate)
	log.Printf("Exchange rate updated: 1 USD = %.4f CNY", rate)
}

// RefreshMarkets fetches all stock and gold quotes and stores them.
// The adapters themselves never fail, so this always writes fresh data.
func (rs *RefreshService) RefreshMarkets(ctx context.Context) {
	rs.cache.SetStocks(rs.market.FetchAllStocks(ctx))
	rs.cache.SetGold(rs.market.FetchGold(ctx))
	rs.broadcast()
}

// RefreshNews replaces the cached headlines. An empty result (all feeds
// down) still replaces the cache; headlines have no synthetic fallback.
func (rs *RefreshService) RefreshNews(ctx context.Context) {
	rs.cache.SetNews(rs.news.FetchNews(ctx))
}

// RegenerateAnalysis asks the model to summarize whatever is cached at
// this moment. On success the brief is stored and returned; on failure
// the cache keeps the previous brief and the static fallback sentence
// is returned instead.
func (rs *RefreshService) RegenerateAnalysis(ctx context.Context) string {
	snap := rs.cache.Snapshot()
	text, err := rs.analyzer.Generate(ctx, snap.Stocks, snap.Gold, snap.News)
	if err != nil {
		log.Printf("Analysis generation failed: %v", err)
		return analysis.FallbackText
	}
	rs.cache.SetAnalysis(text)
	rs.broadcast()
	return text
}

// FullRefresh performs the complete fetch+summarize sequence used at
// startup and by the on-demand regenerate endpoint: exchange rate,
// quotes, gold, news, then analysis over the fresh data. The returned
// snapshot carries whatever RegenerateAnalysis produced, so a failed
// generation surfaces the fallback sentence to this caller while the
// cache keeps the previous brief.
func (rs *RefreshService) FullRefresh(ctx context.Context) *models.Snapshot {
	rs.RefreshExchangeRate(ctx)
	rs.cache.SetStocks(rs.market.FetchAllStocks(ctx))
	rs.cache.SetGold(rs.market.FetchGold(ctx))
	rs.RefreshNews(ctx)
	text := rs.RegenerateAnalysis(ctx)
	rs.broadcast()

	snap := rs.cache.Snapshot()
	snap.Analysis = text
	return snap
}

func (rs *RefreshService) broadcast() {
	if rs.hub != nil {
		rs.hub.BroadcastSnapshot(rs.cache.Snapshot())
	}
}
