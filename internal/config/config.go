package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const DefaultBinanceBaseURL = "https://api.binance.com/api/v3"

type Config struct {
	HTTPPort       int
	BinanceBaseURL string
	CORSOrigins    []string

	// ForceSimulated skips the exchange and serves generated series.
	ForceSimulated bool

	UpstreamTimeoutSecs int
	TickerTimeoutSecs   int
	UpstreamRatePerMin  int

	RedisURL          string
	DatabaseURL       string
	PriceCacheTTLSecs int
	CacheWarmSecs     int

	ReferencePricesPath string

	TelegramBotToken string

	SSHPort                int
	SSHHostKeyPath         string
	SSHAllowedFingerprints []string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		BinanceBaseURL:      strings.TrimRight(strings.TrimSpace(os.Getenv("BINANCE_BASE_URL")), "/"),
		RedisURL:            strings.TrimSpace(os.Getenv("REDIS_URL")),
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ReferencePricesPath: strings.TrimSpace(os.Getenv("REFERENCE_PRICES_PATH")),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		SSHHostKeyPath:      strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH")),
	}

	if cfg.BinanceBaseURL == "" {
		cfg.BinanceBaseURL = DefaultBinanceBaseURL
	}
	if cfg.RedisURL == "" {
		log.Print("Warning: REDIS_URL not set, price cache disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Print("Warning: DATABASE_URL not set, calculation log disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Print("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/hindsight_ed25519"
	}

	cfg.ForceSimulated = parseBool("FORCE_SIMULATED") ||
		strings.EqualFold(strings.TrimSpace(os.Getenv("VERCEL_ENV")), "production")
	if cfg.ForceSimulated {
		log.Print("Warning: simulated mode forced, the exchange will not be queried")
	}

	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)
	cfg.UpstreamTimeoutSecs = positiveInt("UPSTREAM_TIMEOUT_SECS", 10)
	cfg.TickerTimeoutSecs = positiveInt("TICKER_TIMEOUT_SECS", 3)
	cfg.UpstreamRatePerMin = positiveInt("UPSTREAM_RATE_PER_MIN", 1200)
	cfg.PriceCacheTTLSecs = positiveInt("PRICE_CACHE_TTL_SECS", 90)
	cfg.CacheWarmSecs = positiveInt("CACHE_WARM_SECS", 120)
	cfg.SSHPort = positiveInt("SSH_PORT", 2222)

	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	cfg.SSHAllowedFingerprints = splitList(os.Getenv("SSH_ALLOWED_FINGERPRINTS"))

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json", "logfmt":
	default:
		log.Printf("Warning: unsupported LOG_FORMAT=%q, defaulting to text", cfg.LogFormat)
		cfg.LogFormat = "text"
	}

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, defaulting to %d", key, v, def)
		return def
	}
	return n
}

func parseBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.EqualFold(v, "true") || v == "1"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
