package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/Kevinjiang991217/stock-dashboard/services/marketdata"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// FallbackText is returned whenever the model call fails, so the
// dashboard always has something to render.
const FallbackText = "AI分析暂时不可用，请稍后再试。"

const systemPrompt = "你是专业金融分析师"

const (
	maxCompletionTokens = 300
	temperature         = 0.7
	headlineCount       = 3
)

// Analyzer turns the latest market snapshot into a short Chinese-language
// brief via an OpenAI-compatible chat completion endpoint.
type Analyzer struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewAnalyzer builds an analyzer. The API key comes from configuration;
// an empty baseURL uses the provider default.
func NewAnalyzer(apiKey, baseURL, model string, timeout time.Duration) *Analyzer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &Analyzer{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

// Generate requests a market brief for the given snapshot. The request
// is bounded by the analyzer timeout so a hung provider cannot stall a
// refresh cycle. On failure the caller is expected to fall back to
// FallbackText and leave the cached brief untouched.
func (a *Analyzer) Generate(ctx context.Context, stocks models.StockBook, gold *models.GoldData, items []models.NewsItem) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(stocks, gold, items)

	start := time.Now()
	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(maxCompletionTokens),
		Temperature:         openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("analysis completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("analysis completion returned no choices")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("analysis completion returned empty text")
	}

	log.Printf("Analysis generated in %v (%d tokens)", time.Since(start), completion.Usage.CompletionTokens)
	return text, nil
}

// BuildPrompt assembles the fixed-template analysis prompt: quotes
// grouped by region, gold shown per ounce alongside per kilogram, and
// the three most recent headlines.
func BuildPrompt(stocks models.StockBook, gold *models.GoldData, items []models.NewsItem) string {
	var sb strings.Builder

	sb.WriteString("请用简体中文分析以下市场数据（150字以内）：\n\n")

	sb.WriteString("【股票】\n")
	sb.WriteString(formatStocks(stocks))

	sb.WriteString("\n【黄金】\n")
	sb.WriteString(formatGold(gold))

	sb.WriteString("\n【新闻】\n")
	sb.WriteString(formatHeadlines(items))

	sb.WriteString("\n请简要分析：1. 市场整体走势 2. 黄金与美股关系 3. 投资建议")
	return sb.String()
}

func formatStocks(stocks models.StockBook) string {
	regions := make([]string, 0, len(stocks))
	for region := range stocks {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	var sb strings.Builder
	for _, region := range regions {
		sb.WriteString(region)
		sb.WriteString(":\n")

		names := make([]string, 0, len(stocks[region]))
		for name := range stocks[region] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			q := stocks[region][name]
			sign := ""
			if q.ChangePercent >= 0 {
				sign = "+"
			}
			fmt.Fprintf(&sb, "%s: %.2f (%s%.2f%%)\n", name, q.Price, sign, q.ChangePercent)
		}
	}
	return sb.String()
}

func formatGold(gold *models.GoldData) string {
	if gold == nil {
		return ""
	}
	var sb strings.Builder
	for _, item := range gold.International {
		fmt.Fprintf(&sb, "%s: %.2f USD/盎司 (%.0f CNY/公斤)\n",
			item.Name, marketdata.KilogramToOuncePrice(item.Price), item.Price)
	}
	return sb.String()
}

func formatHeadlines(items []models.NewsItem) string {
	if len(items) > headlineCount {
		items = items[:headlineCount]
	}
	var sb strings.Builder
	for _, n := range items {
		fmt.Fprintf(&sb, "- %s\n", n.Title)
	}
	return sb.String()
}
