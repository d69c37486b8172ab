package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	TelegramChatID   int64
	ProviderGroupID  int64
	DatabaseURL      string
	RedisURL         string
	HTTPPort         int

	AllowTrading bool
	Armed        bool

	MinAlertConfidence float64
	AccountBalance     float64
	RiskPerTrade       float64
	MaxTradesOpen      int
	DefaultLot         float64
	DefaultMaxLot      float64

	CronSecret          string
	WebsiteSignalAPIKey string
	AutoClosePollSecs   int

	MarketDataAPIKey  string
	MarketDataBaseURL string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		CronSecret:          os.Getenv("CRON_SECRET"),
		WebsiteSignalAPIKey: os.Getenv("WEBSITE_SIGNAL_API_KEY"),
		MarketDataAPIKey:    os.Getenv("MARKET_DATA_API_KEY"),
		MarketDataBaseURL:   os.Getenv("MARKET_DATA_BASE_URL"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, journal will not survive restarts")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, duplicate window is in-process only")
	}
	if cfg.CronSecret == "" {
		log.Println("Warning: CRON_SECRET not set, auto-close endpoint is unprotected")
	}
	if cfg.WebsiteSignalAPIKey == "" {
		log.Println("Warning: WEBSITE_SIGNAL_API_KEY not set, website ingest is unprotected")
	}
	if cfg.MarketDataAPIKey == "" {
		log.Println("Warning: MARKET_DATA_API_KEY not set, auto-close will skip all trades")
	}

	cfg.TelegramChatID = envInt64("TELEGRAM_CHAT_ID", 0)
	cfg.ProviderGroupID = envInt64("PROVIDER_GROUP_ID", 0)

	cfg.AllowTrading = envBool("ALLOW_TRADING")
	cfg.Armed = envBool("ARMED")

	cfg.MinAlertConfidence = envFloat("MIN_ALERT_CONFIDENCE", 0.65)
	cfg.AccountBalance = envFloat("ACCOUNT_BALANCE", 10000)
	cfg.RiskPerTrade = envFloat("RISK_PER_TRADE", 0.10)
	cfg.DefaultLot = envFloat("DEFAULT_LOT", 0.10)
	cfg.DefaultMaxLot = envFloat("DEFAULT_MAX_LOT", 2.0)

	cfg.MaxTradesOpen = envInt("MAX_TRADES_OPEN", 5)
	cfg.AutoClosePollSecs = envInt("AUTO_CLOSE_POLL_SECS", 60)

	cfg.HTTPPort = envInt("HTTP_PORT", 8080)

	return cfg
}

// TradingEnabled and IsArmed expose the gate flags to transports.
func (c *Config) TradingEnabled() bool { return c.AllowTrading }

func (c *Config) IsArmed() bool { return c.Armed }

func envBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func envInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
		log.Printf("Warning: invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}
