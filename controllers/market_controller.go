package controllers

import (
	"net/http"

	"github.com/Kevinjiang991217/stock-dashboard/services"
	"github.com/gin-gonic/gin"
)

// MarketController serves the dashboard API from the refresh cache.
type MarketController struct {
	refresher *services.RefreshService
	cache     *services.MarketCache
	hub       *services.StreamHub
}

// NewMarketController creates a new market controller
func NewMarketController(refresher *services.RefreshService, hub *services.StreamHub) *MarketController {
	return &MarketController{
		refresher: refresher,
		cache:     refresher.Cache(),
		hub:       hub,
	}
}

// GetStocks returns the latest quotes grouped by region.
// GET /api/stocks
func (mc *MarketController) GetStocks(c *gin.Context) {
	stocks := mc.cache.Stocks()
	if stocks == nil {
		mc.refresher.RefreshMarkets(c.Request.Context())
		stocks = mc.cache.Stocks()
	}
	c.JSON(http.StatusOK, stocks)
}

// GetGold returns the latest gold quotes grouped by region.
// GET /api/gold
func (mc *MarketController) GetGold(c *gin.Context) {
	gold := mc.cache.Gold()
	if gold == nil {
		mc.refresher.RefreshMarkets(c.Request.Context())
		gold = mc.cache.Gold()
	}
	c.JSON(http.StatusOK, gold)
}

// GetNews returns cached headlines, fetching on first use.
// GET /api/news
func (mc *MarketController) GetNews(c *gin.Context) {
	items := mc.cache.News()
	if items == nil {
		mc.refresher.RefreshNews(c.Request.Context())
		items = mc.cache.News()
	}
	c.JSON(http.StatusOK, items)
}

// GetAnalysis returns the cached AI brief.
// GET /api/analysis
func (mc *MarketController) GetAnalysis(c *gin.Context) {
	c.JSON(http.StatusOK, mc.cache.Analysis())
}

// GetExchangeRate returns the cached USD->CNY rate.
// GET /api/exchange-rate
func (mc *MarketController) GetExchangeRate(c *gin.Context) {
	c.JSON(http.StatusOK, mc.cache.ExchangeRate())
}

// GetHistory returns a daily OHLC series for a chart symbol alias.
// GET /api/history/:symbol
func (mc *MarketController) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	series := mc.refresher.FetchHistory(c.Request.Context(), symbol)
	c.JSON(http.StatusOK, series)
}

// GetAll returns the combined snapshot, regenerating the analysis
// synchronously over freshly fetched data. Latency therefore depends
// on the text-generation provider.
// GET /api/all
func (mc *MarketController) GetAll(c *gin.Context) {
	snapshot := mc.refresher.FullRefresh(c.Request.Context())
	c.JSON(http.StatusOK, snapshot)
}

// GenerateAnalysis forces an immediate fetch+summarize cycle and
// returns the resulting text. When generation fails the body carries
// the fallback sentence while the cached brief and its timestamp stay
// at the last successful generation.
// POST /api/generate-analysis
func (mc *MarketController) GenerateAnalysis(c *gin.Context) {
	snapshot := mc.refresher.FullRefresh(c.Request.Context())
	brief := mc.cache.Analysis()
	brief.Analysis = snapshot.Analysis
	c.JSON(http.StatusOK, brief)
}

// StreamSnapshots upgrades to WebSocket and pushes snapshot updates.
// GET /ws
func (mc *MarketController) StreamSnapshots(c *gin.Context) {
	mc.hub.HandleWebSocket(c.Writer, c.Request, mc.cache.Snapshot())
}
