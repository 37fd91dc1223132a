package services

import (
	"sync"
	"testing"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/Kevinjiang991217/stock-dashboard/services/fx"
	"github.com/stretchr/testify/assert"
)

func TestNewMarketCacheDefaults(t *testing.T) {
	cache := NewMarketCache()

	assert.Nil(t, cache.Stocks())
	assert.Nil(t, cache.Gold())
	assert.Nil(t, cache.News())

	brief := cache.Analysis()
	assert.Empty(t, brief.Analysis)
	assert.Zero(t, brief.Timestamp)

	rate := cache.ExchangeRate()
	assert.Equal(t, fx.DefaultRate, rate.Rate)
	assert.Equal(t, "Frankfurter", rate.Source)
}

func TestSetAnalysisUpdatesTimestamp(t *testing.T) {
	cache := NewMarketCache()

	cache.SetAnalysis("first brief")
	first := cache.Analysis()
	assert.Equal(t, "first brief", first.Analysis)
	assert.NotZero(t, first.Timestamp)
}

// Concurrent writers and readers must never observe a torn brief: the
// analysis field is always one of the complete strings written.
func TestAnalysisIsNeverPartiallyWritten(t *testing.T) {
	cache := NewMarketCache()
	cache.SetAnalysis("old complete brief")

	valid := map[string]bool{
		"old complete brief": true,
		"new complete brief": true,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cache.SetAnalysis("new complete brief")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				brief := cache.Analysis()
				if !valid[brief.Analysis] {
					t.Errorf("observed torn analysis value: %q", brief.Analysis)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "new complete brief", cache.Analysis().Analysis)
}

func TestSnapshotReflectsPerFieldState(t *testing.T) {
	cache := NewMarketCache()

	stocks := models.StockBook{"usa": {"标普500": &models.Quote{Price: 5000}}}
	cache.SetStocks(stocks)
	cache.SetExchangeRate(7.1)

	snap := cache.Snapshot()
	assert.Equal(t, stocks, snap.Stocks)
	assert.Equal(t, 7.1, snap.ExchangeRate)
	// untouched fields stay at their defaults
	assert.Nil(t, snap.Gold)
	assert.Empty(t, snap.Analysis)
}
