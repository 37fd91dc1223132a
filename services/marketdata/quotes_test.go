package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

func newTestClient(t *testing.T, handler http.HandlerFunc) (*AlphaVantageClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAlphaVantageClient(server.URL, "demo", testTimeout), server
}

// deadClient points at a server that is already closed, so every call
// fails at the transport level.
func deadClient(t *testing.T) *AlphaVantageClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	return NewAlphaVantageClient(server.URL, "demo", testTimeout)
}

func TestSyntheticQuoteIsInternallyConsistent(t *testing.T) {
	for _, symbol := range []string{"SPX", "DJI", "000001.SS", "TOTALLY-UNKNOWN"} {
		q := SyntheticQuote(symbol, "test")

		assert.Equal(t, models.SourceSynthetic, q.Source)
		assert.InDelta(t, q.Price-q.PreviousClose, q.Change, 1e-9, "change must equal price - previousClose for %s", symbol)
		assert.InDelta(t, q.Change/q.PreviousClose*100, q.ChangePercent, 1e-9, "percent change must be consistent for %s", symbol)
		assert.InDelta(t, q.PreviousClose, q.Price, 50.0, "price noise is bounded for %s", symbol)
		assert.NotZero(t, q.Timestamp)
	}
}

func TestSyntheticQuoteUsesBasePriceTable(t *testing.T) {
	q := SyntheticQuote("SPX", "标普500")
	assert.Equal(t, float64(5000), q.PreviousClose)

	unknown := SyntheticQuote("NOPE", "nope")
	assert.Equal(t, float64(defaultBasePrice), unknown.PreviousClose)
}

func TestFetchQuoteLive(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		require.Equal(t, "SPX", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"Global Quote": {
			"01. symbol": "SPX",
			"02. open": "95.00",
			"03. high": "101.00",
			"04. low": "94.00",
			"05. price": "100.00",
			"08. previous close": "90.00",
			"09. change": "10.00",
			"10. change percent": "11.1111%"
		}}`))
	})

	svc := NewService(client)
	q := svc.FetchQuote(context.Background(), "SPX", "标普500")

	assert.Equal(t, models.SourceLive, q.Source)
	assert.Equal(t, "标普500", q.Name)
	assert.Equal(t, 100.0, q.Price)
	assert.Equal(t, 90.0, q.PreviousClose)
	assert.Equal(t, 10.0, q.Change)
	assert.InDelta(t, 11.11, q.ChangePercent, 0.01)
	assert.InDelta(t, q.Price-q.PreviousClose, q.Change, 1e-9)
}

func TestFetchQuoteFallsBackToSynthetic(t *testing.T) {
	svc := NewService(deadClient(t))

	q := svc.FetchQuote(context.Background(), "SPX", "标普500")
	assert.Equal(t, models.SourceSynthetic, q.Source)
	assert.Equal(t, "标普500", q.Name)
}

func TestFetchQuoteFallsBackOnEmptyPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Alpha Vantage rate limiting answers 200 with a note instead
		// of a quote
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage!"}`))
	})

	svc := NewService(client)
	q := svc.FetchQuote(context.Background(), "DJI", "道琼斯")
	assert.Equal(t, models.SourceSynthetic, q.Source)
}

// Exercises the concurrent fan-out repeatedly with a slow upstream so
// the race detector can observe the goroutines reading the region maps
// while the book is being assembled.
func TestFetchAllStocksConcurrentFanOut(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.Write([]byte(`{}`))
	})
	svc := NewService(client)

	for i := 0; i < 50; i++ {
		book := svc.FetchAllStocks(context.Background())
		for region, symbols := range StockSymbols {
			require.Len(t, book[region], len(symbols))
		}
	}
}

func TestFetchAllStocksCoversEveryRegion(t *testing.T) {
	svc := NewService(deadClient(t))

	book := svc.FetchAllStocks(context.Background())
	require.Len(t, book, len(StockSymbols))

	for region, symbols := range StockSymbols {
		require.Contains(t, book, region)
		require.Len(t, book[region], len(symbols))
		for name := range symbols {
			q := book[region][name]
			require.NotNil(t, q, "missing quote for %s/%s", region, name)
			assert.Equal(t, name, q.Name)
		}
	}
}
