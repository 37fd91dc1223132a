package marketdata

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
)

// Recognized chart aliases mapped to provider symbols.
var historySymbolAliases = map[string]string{
	"sp500":    "SPX",
	"nasdaq":   "IXIC",
	"gold":     "XAUUSD",
	"shanghai": "000001.SS",
}

// Base prices for the mock candle random walk, keyed by chart alias.
var historyBasePrices = map[string]float64{
	"gold":     2000,
	"sp500":    5000,
	"nasdaq":   15000,
	"shanghai": 3200,
}

// FetchHistory returns a daily OHLC series for a chart alias. Provider
// failure falls through to a synthetic random walk tagged "mock".
func (s *Service) FetchHistory(ctx context.Context, alias string) *models.HistorySeries {
	symbol := historySymbolAliases[alias]
	if symbol == "" {
		symbol = alias
	}

	candles, err := s.av.DailySeries(ctx, symbol)
	if err == nil && len(candles) > 0 {
		return &models.HistorySeries{Source: models.SourceLive, Candles: candles}
	}
	if err != nil {
		log.Printf("History fetch failed for %s, using mock candles: %v", symbol, err)
	}

	return &models.HistorySeries{Source: models.SourceMock, Candles: MockCandles(alias)}
}

// MockCandles builds a 91-point daily random walk ending today, seeded
// from the alias' base price with a mild upward drift.
func MockCandles(alias string) []models.Candle {
	base := historyBasePrices[alias]
	if base == 0 {
		base = defaultBasePrice
	}

	now := time.Now().Unix()
	candles := make([]models.Candle, 0, 91)

	for i := 90; i >= 0; i-- {
		open := base + (rand.Float64()-0.5)*200 + float64(90-i)*5
		change := (rand.Float64() - 0.5) * 50
		close := open + change
		high := math.Max(open, close) + rand.Float64()*30
		low := math.Min(open, close) - rand.Float64()*30

		candles = append(candles, models.Candle{
			Time:  now - int64(i)*86400,
			Open:  open,
			High:  high,
			Low:   low,
			Close: close,
		})
	}

	return candles
}
