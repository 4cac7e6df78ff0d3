package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	TelegramToken  string
	TelegramChatID string

	// Offer selection configuration
	AffiliateTag  string
	MinDiscount   int
	MaxOffersSend int

	// History configuration
	HistoryFile   string
	HistoryWindow time.Duration

	// Source configuration
	SearchURLs      []string
	MaxCardsPerPage int
	BlockTime       time.Duration

	// Redis mirror configuration (disabled when RedisAddr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Worker configuration
	CrawlInterval time.Duration

	// Environment
	Environment string
}

const defaultSearchURLs = "https://www.amazon.it/s?k=offerte," +
	"https://www.amazon.it/s?k=offerte+oggi," +
	"https://www.amazon.it/s?k=sconto"

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	minDiscount, _ := strconv.Atoi(getEnv("MIN_DISCOUNT", "10"))
	maxOffersSend, _ := strconv.Atoi(getEnv("MAX_OFFERS_SEND", "10"))
	historyWindow, _ := strconv.Atoi(getEnv("HISTORY_WINDOW_HOURS", "24"))
	maxCards, _ := strconv.Atoi(getEnv("MAX_CARDS_PER_PAGE", "40"))
	blockTime, _ := strconv.Atoi(getEnv("BLOCK_TIME_SECONDS", "600"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	crawlInterval, _ := strconv.Atoi(getEnv("CRAWL_INTERVAL_SECONDS", "3600"))

	return &Config{
		TelegramToken:        getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID:       getEnv("TELEGRAM_CHAT_ID", ""),
		AffiliateTag:         getEnv("AFFILIATE_TAG", "risparmioevol-21"),
		MinDiscount:          minDiscount,
		MaxOffersSend:        maxOffersSend,
		HistoryFile:          getEnv("HISTORY_FILE", "published.json"),
		HistoryWindow:        time.Duration(historyWindow) * time.Hour,
		SearchURLs:           splitURLs(getEnv("SEARCH_URLS", defaultSearchURLs)),
		MaxCardsPerPage:      maxCards,
		BlockTime:            time.Duration(blockTime) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "offers"),
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		CrawlInterval:        time.Duration(crawlInterval) * time.Second,
		Environment:          getEnv("RISPARMIO_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.MinDiscount < 0 || c.MinDiscount > 99 {
		return fmt.Errorf("MIN_DISCOUNT must be between 0 and 99, got %d", c.MinDiscount)
	}
	if c.MaxOffersSend <= 0 {
		return fmt.Errorf("MAX_OFFERS_SEND must be positive, got %d", c.MaxOffersSend)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("HISTORY_WINDOW_HOURS must be positive")
	}
	if len(c.SearchURLs) == 0 {
		return fmt.Errorf("SEARCH_URLS must contain at least one URL")
	}
	return nil
}

// splitURLs splits a comma-separated URL list, dropping empty entries
func splitURLs(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
