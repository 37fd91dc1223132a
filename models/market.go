package models

import "time"

// Quote sources
const (
	SourceLive      = "live"
	SourceSynthetic = "synthetic"
	SourceMock      = "mock"
)

// Quote represents the latest price snapshot for a single instrument.
// Quotes are built fresh on every fetch and never mutated in place.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Currency      string  `json:"currency"`
	PreviousClose float64 `json:"previousClose"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Timestamp     int64   `json:"timestamp"`
	Source        string  `json:"source"`
}

// StockBook maps region -> display name -> quote.
type StockBook map[string]map[string]*Quote

// MetalQuote is a precious-metal price denominated per kilogram.
type MetalQuote struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Currency      string  `json:"currency"`
	Timestamp     int64   `json:"timestamp"`
	Source        string  `json:"source"`
}

// GoldData groups metal quotes by market region.
type GoldData struct {
	International []MetalQuote `json:"international"`
	China         []MetalQuote `json:"china"`
}

// NewsItem is a single normalized headline from an RSS feed.
type NewsItem struct {
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	PubDate  time.Time `json:"pubDate"`
	Source   string    `json:"source"`
	Language string    `json:"language"`
}

// ExchangeRate is the USD->CNY rate singleton.
type ExchangeRate struct {
	Rate      float64 `json:"rate"`
	Source    string  `json:"source"`
	Timestamp int64   `json:"timestamp"`
}

// AnalysisBrief is the latest AI-generated market commentary.
type AnalysisBrief struct {
	Analysis  string `json:"analysis"`
	Timestamp int64  `json:"timestamp"`
}

// Candle is one daily OHLC bar for the history endpoint.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// HistorySeries is a daily candle series plus where it came from.
type HistorySeries struct {
	Source  string   `json:"source"`
	Candles []Candle `json:"candles"`
}

// Snapshot is the combined cache state returned by /api/all and pushed
// to WebSocket subscribers. Fields may have been refreshed at different
// times; each one is the last fully written value.
type Snapshot struct {
	Stocks       StockBook  `json:"stocks"`
	Gold         *GoldData  `json:"gold"`
	News         []NewsItem `json:"news"`
	Analysis     string     `json:"analysis"`
	ExchangeRate float64    `json:"exchangeRate"`
}
