package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load reads the yaml config file at path and applies environment overrides.
// Credentials are normally supplied through the environment, not the file.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
		// No file: run on defaults + environment only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "dev"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.HTTPAddr == "" {
		cfg.App.HTTPAddr = ":9981"
	}
	if cfg.Trading.Symbol == "" {
		cfg.Trading.Symbol = "BTC"
	}
	if cfg.Trading.PaymentCurrency == "" {
		cfg.Trading.PaymentCurrency = "KRW"
	}
	if cfg.Trading.MinBuyKRW <= 0 {
		cfg.Trading.MinBuyKRW = 10000
	}
	if cfg.Trading.CycleInterval == "" {
		cfg.Trading.CycleInterval = "20m"
	}
	if cfg.Bithumb.APIURL == "" {
		cfg.Bithumb.APIURL = "https://api.bithumb.com"
	}
	if cfg.Bithumb.TimeoutSeconds <= 0 {
		cfg.Bithumb.TimeoutSeconds = 15
	}
	if len(cfg.Naver.Keywords) == 0 {
		cfg.Naver.Keywords = []string{"비트코인", "이더리움", "나스닥", "미국대선", "일론머스크"}
	}
	if cfg.Naver.Display <= 0 {
		cfg.Naver.Display = 10
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Market.CandleCount <= 0 {
		cfg.Market.CandleCount = 200
	}
	if cfg.Market.OrderbookDepth <= 0 {
		cfg.Market.OrderbookDepth = 5
	}
	if cfg.Store.TradeLogPath == "" {
		cfg.Store.TradeLogPath = "data/tradelog.db"
	}
	if cfg.Store.NewsDBPath == "" {
		cfg.Store.NewsDBPath = "data/news.db"
	}
}

// applyEnvOverrides lets secrets and the investment cap come from the process
// environment so the yaml file can stay credential-free.
func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.Bithumb.APIKey, "BITHUMB_API_KEY")
	overrideString(&cfg.Bithumb.APISecret, "BITHUMB_API_SECRET")
	overrideString(&cfg.Naver.ClientID, "NAVER_CLIENT_ID")
	overrideString(&cfg.Naver.ClientSecret, "NAVER_CLIENT_SECRET")
	overrideString(&cfg.AI.APIKey, "OPENAI_API_KEY")
	if raw := strings.TrimSpace(os.Getenv("INVESTMENT")); raw != "" {
		var inv float64
		if _, err := fmt.Sscanf(raw, "%f", &inv); err == nil && inv > 0 {
			cfg.Trading.Investment = inv
		}
	}
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// validate enforces the hard startup requirements. Anything missing here is
// fatal at process start, never a per-cycle condition.
func validate(cfg *Config) error {
	var missing []string
	if cfg.Bithumb.APIKey == "" {
		missing = append(missing, "bithumb.api_key (BITHUMB_API_KEY)")
	}
	if cfg.Bithumb.APISecret == "" {
		missing = append(missing, "bithumb.api_secret (BITHUMB_API_SECRET)")
	}
	if cfg.Naver.ClientID == "" {
		missing = append(missing, "naver.client_id (NAVER_CLIENT_ID)")
	}
	if cfg.Naver.ClientSecret == "" {
		missing = append(missing, "naver.client_secret (NAVER_CLIENT_SECRET)")
	}
	if cfg.AI.APIKey == "" {
		missing = append(missing, "ai.api_key (OPENAI_API_KEY)")
	}
	if cfg.Trading.Investment <= 0 {
		missing = append(missing, "trading.investment (INVESTMENT)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuration missing: %s", strings.Join(missing, ", "))
	}
	if _, err := time.ParseDuration(cfg.Trading.CycleInterval); err != nil {
		return fmt.Errorf("trading.cycle_interval is not a valid duration: %w", err)
	}
	if cfg.Market.PrefetchInterval != "" {
		if _, err := time.ParseDuration(cfg.Market.PrefetchInterval); err != nil {
			return fmt.Errorf("market.prefetch_interval is not a valid duration: %w", err)
		}
	}
	return nil
}

// CycleInterval returns the parsed cycle interval. Load guarantees validity.
func (c *Config) CycleInterval() time.Duration {
	d, _ := time.ParseDuration(c.Trading.CycleInterval)
	return d
}
