package services

import (
	"sync"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/Kevinjiang991217/stock-dashboard/services/fx"
)

// MarketCache holds the most recent snapshot of every dashboard field.
// Each field is replaced wholesale under the lock, so readers always
// observe the last fully written value; there is deliberately no
// multi-field transaction. Lifecycle is the process lifetime.
type MarketCache struct {
	mu sync.RWMutex

	stocks models.StockBook
	gold   *models.GoldData
	news   []models.NewsItem

	analysis   string
	analysisAt int64

	rate   float64
	rateAt int64
}

// NewMarketCache returns a cache seeded with the default exchange rate.
func NewMarketCache() *MarketCache {
	return &MarketCache{
		rate:   fx.DefaultRate,
		rateAt: time.Now().UnixMilli(),
	}
}

func (c *MarketCache) Stocks() models.StockBook {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stocks
}

func (c *MarketCache) SetStocks(stocks models.StockBook) {
	c.mu.Lock()
	c.stocks = stocks
	c.mu.Unlock()
}

func (c *MarketCache) Gold() *models.GoldData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gold
}

func (c *MarketCache) SetGold(gold *models.GoldData) {
	c.mu.Lock()
	c.gold = gold
	c.mu.Unlock()
}

func (c *MarketCache) News() []models.NewsItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.news
}

func (c *MarketCache) SetNews(items []models.NewsItem) {
	c.mu.Lock()
	c.news = items
	c.mu.Unlock()
}

// Analysis returns the cached brief. Before the first successful
// generation the text is empty and the timestamp zero.
func (c *MarketCache) Analysis() models.AnalysisBrief {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.AnalysisBrief{Analysis: c.analysis, Timestamp: c.analysisAt}
}

// SetAnalysis overwrites the brief. Callers must only invoke this with
// a successfully generated text; failed generations leave the previous
// brief and its timestamp in place.
func (c *MarketCache) SetAnalysis(text string) {
	c.mu.Lock()
	c.analysis = text
	c.analysisAt = time.Now().UnixMilli()
	c.mu.Unlock()
}

func (c *MarketCache) ExchangeRate() models.ExchangeRate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.ExchangeRate{Rate: c.rate, Source: "Frankfurter", Timestamp: c.rateAt}
}

// SetExchangeRate overwrites the rate singleton. A failed fetch must
// not call this; the stale value is retained indefinitely.
func (c *MarketCache) SetExchangeRate(rate float64) {
	c.mu.Lock()
	c.rate = rate
	c.rateAt = time.Now().UnixMilli()
	c.mu.Unlock()
}

// Snapshot assembles the combined view served by /api/all and pushed
// over the WebSocket stream.
func (c *MarketCache) Snapshot() *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &models.Snapshot{
		Stocks:       c.stocks,
		Gold:         c.gold,
		News:         c.news,
		Analysis:     c.analysis,
		ExchangeRate: c.rate,
	}
}
