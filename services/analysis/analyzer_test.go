package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() (models.StockBook, *models.GoldData, []models.NewsItem) {
	stocks := models.StockBook{
		"usa": {
			"标普500": &models.Quote{Name: "标普500", Price: 5000, ChangePercent: 1.5},
		},
		"china": {
			"上证指数": &models.Quote{Name: "上证指数", Price: 3200.5, ChangePercent: -0.25},
		},
	}
	gold := &models.GoldData{
		International: []models.MetalQuote{{Name: "现货黄金", Price: 64301.4, Currency: "USD"}},
	}
	news := []models.NewsItem{
		{Title: "Fed holds rates"},
		{Title: "Gold rallies"},
		{Title: "Tech stocks slip"},
		{Title: "should not appear"},
	}
	return stocks, gold, news
}

func TestBuildPromptFormat(t *testing.T) {
	stocks, gold, news := sampleSnapshot()
	prompt := BuildPrompt(stocks, gold, news)

	assert.Contains(t, prompt, "请用简体中文分析以下市场数据（150字以内）：")
	assert.Contains(t, prompt, "【股票】")
	assert.Contains(t, prompt, "【黄金】")
	assert.Contains(t, prompt, "【新闻】")

	assert.Contains(t, prompt, "标普500: 5000.00 (+1.50%)")
	assert.Contains(t, prompt, "上证指数: 3200.50 (-0.25%)")

	// 64301.4 per kilogram converts back to exactly 2000 per ounce
	assert.Contains(t, prompt, "现货黄金: 2000.00 USD/盎司")
	assert.Contains(t, prompt, "(64301 CNY/公斤)")

	assert.Contains(t, prompt, "- Fed holds rates")
	assert.Contains(t, prompt, "- Tech stocks slip")
	assert.NotContains(t, prompt, "should not appear")

	assert.Contains(t, prompt, "1. 市场整体走势 2. 黄金与美股关系 3. 投资建议")
}

func TestBuildPromptGroupsRegionsDeterministically(t *testing.T) {
	stocks, gold, news := sampleSnapshot()
	first := BuildPrompt(stocks, gold, news)
	second := BuildPrompt(stocks, gold, news)
	assert.Equal(t, first, second)

	// regions come out sorted, so china precedes usa
	assert.Less(t, strings.Index(first, "china:"), strings.Index(first, "usa:"))
}

func TestGenerateReturnsCompletionText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "市场整体平稳。"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120}
		}`))
	}))
	defer server.Close()

	a := NewAnalyzer("test-key", server.URL, "gpt-3.5-turbo", 2*time.Second)
	stocks, gold, news := sampleSnapshot()

	text, err := a.Generate(context.Background(), stocks, gold, news)
	require.NoError(t, err)
	assert.Equal(t, "市场整体平稳。", text)
}

func TestGenerateFailsOnProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	server.Close()

	a := NewAnalyzer("test-key", server.URL, "gpt-3.5-turbo", 1*time.Second)
	stocks, gold, news := sampleSnapshot()

	_, err := a.Generate(context.Background(), stocks, gold, news)
	assert.Error(t, err)
}

func TestGenerateFailsOnEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "chatcmpl-test", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	a := NewAnalyzer("test-key", server.URL, "gpt-3.5-turbo", 2*time.Second)
	stocks, gold, news := sampleSnapshot()

	_, err := a.Generate(context.Background(), stocks, gold, news)
	assert.Error(t, err)
}
