package marketdata

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
)

// Tracked index symbols per region. Keys are the display names the
// dashboard shows, values are the provider symbols.
var StockSymbols = map[string]map[string]string{
	"china": {
		"上证指数": "000001.SS",
		"深证成指": "399001.SZ",
	},
	"usa": {
		"标普500": "SPX",
		"道琼斯":  "DJI",
		"纳斯达克": "IXIC",
	},
}

// Base prices used by the synthetic generator when the live fetch fails.
var stockBasePrices = map[string]float64{
	"SPX":       5000,
	"DJI":       38000,
	"IXIC":      15000,
	"000001.SS": 3200,
	"399001.SZ": 10000,
}

const defaultBasePrice = 3000

// Service fetches instrument quotes, falling back to synthetic data so
// a provider outage never fails the caller.
type Service struct {
	av *AlphaVantageClient
}

func NewService(av *AlphaVantageClient) *Service {
	return &Service{av: av}
}

// FetchQuote returns the latest quote for one instrument. It never
// fails: on any provider error a synthetic quote is returned instead,
// tagged with Source = "synthetic".
func (s *Service) FetchQuote(ctx context.Context, symbol, name string) *models.Quote {
	quote, err := s.av.GlobalQuote(ctx, symbol)
	if err != nil {
		log.Printf("Quote fetch failed for %s, using synthetic data: %v", symbol, err)
		return SyntheticQuote(symbol, name)
	}
	quote.Name = name
	return quote
}

// FetchAllStocks fetches every tracked instrument. All region maps are
// allocated before any goroutine starts; each goroutine then writes a
// disjoint inner-map entry under the mutex.
func (s *Service) FetchAllStocks(ctx context.Context) models.StockBook {
	book := models.StockBook{}
	for region, symbols := range StockSymbols {
		book[region] = make(map[string]*models.Quote, len(symbols))
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for region, symbols := range StockSymbols {
		for name, symbol := range symbols {
			wg.Add(1)
			go func(region, name, symbol string) {
				defer wg.Done()
				quote := s.FetchQuote(ctx, symbol, name)
				mu.Lock()
				book[region][name] = quote
				mu.Unlock()
			}(region, name, symbol)
		}
	}

	wg.Wait()
	return book
}

// SyntheticQuote fabricates a statistically plausible quote around the
// instrument's base price. Change and percent change are derived from
// the perturbed price so the quote stays internally consistent.
func SyntheticQuote(symbol, name string) *models.Quote {
	base := stockBasePrices[symbol]
	if base == 0 {
		base = defaultBasePrice
	}

	price := base + (rand.Float64()-0.5)*100
	change := price - base

	return &models.Quote{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: change / base * 100,
		Currency:      "USD",
		PreviousClose: base,
		Open:          base + (rand.Float64()-0.5)*20,
		High:          base + rand.Float64()*30,
		Low:           base - rand.Float64()*30,
		Timestamp:     time.Now().UnixMilli(),
		Source:        models.SourceSynthetic,
	}
}
