package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultRate is served until the first successful fetch.
const DefaultRate = 7.2

// Client fetches USD->CNY rates from the Frankfurter API.
type Client struct {
	baseURL string
	client  *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetTimeout(timeout)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type latestResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Latest returns the current USD->CNY rate.
func (c *Client) Latest(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/latest?from=USD&to=CNY", c.baseURL)

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("frankfurter: status %d", resp.StatusCode())
	}

	var payload latestResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return 0, err
	}

	rate, ok := payload.Rates["CNY"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("frankfurter: CNY rate missing")
	}
	return rate, nil
}
