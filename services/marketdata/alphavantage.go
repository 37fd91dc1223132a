package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/go-resty/resty/v2"
)

// HistoryMaxCandles caps the daily series returned by the history endpoint.
const HistoryMaxCandles = 90

// AlphaVantageClient wraps the Alpha Vantage query API.
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	client  *resty.Client
}

// NewAlphaVantageClient creates a client with a per-request timeout.
func NewAlphaVantageClient(baseURL, apiKey string, timeout time.Duration) *AlphaVantageClient {
	client := resty.New()
	client.SetTimeout(timeout)

	return &AlphaVantageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// GlobalQuoteResponse represents the GLOBAL_QUOTE payload. Alpha Vantage
// returns every numeric field as a string.
type GlobalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// CurrencyExchangeResponse represents the CURRENCY_EXCHANGE_RATE payload.
type CurrencyExchangeResponse struct {
	RealtimeRate struct {
		ExchangeRate string `json:"5. Exchange Rate"`
	} `json:"Realtime Currency Exchange Rate"`
}

// TimeSeriesDailyResponse represents the TIME_SERIES_DAILY payload.
type TimeSeriesDailyResponse struct {
	TimeSeries map[string]struct {
		Open  string `json:"1. open"`
		High  string `json:"2. high"`
		Low   string `json:"3. low"`
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// GlobalQuote fetches the latest quote for a symbol.
func (c *AlphaVantageClient) GlobalQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("alpha vantage quote %s: status %d", symbol, resp.StatusCode())
	}

	var payload GlobalQuoteResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, err
	}

	q := payload.GlobalQuote
	if q.Price == "" {
		return nil, fmt.Errorf("alpha vantage quote %s: empty payload", symbol)
	}

	price, err := strconv.ParseFloat(q.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage quote %s: bad price %q", symbol, q.Price)
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        parseFloatOrZero(q.Change),
		ChangePercent: parseFloatOrZero(strings.TrimSuffix(q.ChangePercent, "%")),
		PreviousClose: parseFloatOrZero(q.PreviousClose),
		Open:          parseFloatOrZero(q.Open),
		High:          parseFloatOrZero(q.High),
		Low:           parseFloatOrZero(q.Low),
		Currency:      "USD",
		Timestamp:     time.Now().UnixMilli(),
		Source:        models.SourceLive,
	}, nil
}

// XAURate fetches the USD price per troy ounce of gold.
func (c *AlphaVantageClient) XAURate(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/query?function=CURRENCY_EXCHANGE_RATE&from_currency=USD&to_currency=XAU&apikey=%s", c.baseURL, c.apiKey)

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("alpha vantage gold: status %d", resp.StatusCode())
	}

	var payload CurrencyExchangeResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return 0, err
	}
	if payload.RealtimeRate.ExchangeRate == "" {
		return 0, fmt.Errorf("alpha vantage gold: empty payload")
	}

	rate, err := strconv.ParseFloat(payload.RealtimeRate.ExchangeRate, 64)
	if err != nil {
		return 0, fmt.Errorf("alpha vantage gold: bad rate %q", payload.RealtimeRate.ExchangeRate)
	}
	return rate, nil
}

// DailySeries fetches up to HistoryMaxCandles daily bars, newest first.
func (c *AlphaVantageClient) DailySeries(ctx context.Context, symbol string) ([]models.Candle, error) {
	url := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("alpha vantage history %s: status %d", symbol, resp.StatusCode())
	}

	var payload TimeSeriesDailyResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, err
	}
	if len(payload.TimeSeries) == 0 {
		return nil, fmt.Errorf("alpha vantage history %s: empty payload", symbol)
	}

	dates := make([]string, 0, len(payload.TimeSeries))
	for d := range payload.TimeSeries {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	if len(dates) > HistoryMaxCandles {
		dates = dates[:HistoryMaxCandles]
	}

	candles := make([]models.Candle, 0, len(dates))
	for _, d := range dates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		bar := payload.TimeSeries[d]
		candles = append(candles, models.Candle{
			Time:  day.Unix(),
			Open:  parseFloatOrZero(bar.Open),
			High:  parseFloatOrZero(bar.High),
			Low:   parseFloatOrZero(bar.Low),
			Close: parseFloatOrZero(bar.Close),
		})
	}
	return candles, nil
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
