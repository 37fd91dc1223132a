package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	AlphaVantageKey     string
	AlphaVantageBaseURL string
	FrankfurterBaseURL  string

	// OpenAI credential is supplied strictly via environment; there is
	// deliberately no default value.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	NewsPerFeedLimit int
	NewsTotalLimit   int

	FetchTimeout    time.Duration
	AnalysisTimeout time.Duration
}

var AppConfig *Config

// LoadConfig loads environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:                getEnv("PORT", "3000"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		AlphaVantageKey:     getEnv("ALPHA_VANTAGE_KEY", "demo"),
		AlphaVantageBaseURL: getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"),
		FrankfurterBaseURL:  getEnv("FRANKFURTER_BASE_URL", "https://api.frankfurter.app"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		NewsPerFeedLimit:    getEnvInt("NEWS_PER_FEED_LIMIT", 5),
		NewsTotalLimit:      getEnvInt("NEWS_TOTAL_LIMIT", 10),
		FetchTimeout:        time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		AnalysisTimeout:     time.Duration(getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	AppConfig = config
	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
