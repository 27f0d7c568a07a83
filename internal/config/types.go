package config

// Config is the main configuration carrier for bitgyeol.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Trading TradingConfig `yaml:"trading"`
	Bithumb BithumbConfig `yaml:"bithumb"`
	Naver   NaverConfig   `yaml:"naver"`
	AI      AIConfig      `yaml:"ai"`
	Market  MarketConfig  `yaml:"market"`
	Store   StoreConfig   `yaml:"store"`
	Prompt  PromptConfig  `yaml:"prompt"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`
	LogPath  string `yaml:"log_path"`
	LLMLog   string `yaml:"llm_log_path"`
	LLMDump  bool   `yaml:"llm_dump_payload"`
}

// TradingConfig controls the decision cycle and the trade gate.
type TradingConfig struct {
	Symbol          string  `yaml:"symbol"`           // order currency, e.g. "BTC"
	PaymentCurrency string  `yaml:"payment_currency"` // quote currency, fixed to KRW on Bithumb
	Investment      float64 `yaml:"investment"`       // max KRW committed per buy decision
	MinBuyKRW       float64 `yaml:"min_buy_krw"`      // below this available balance, buys are blocked
	CycleInterval   string  `yaml:"cycle_interval"`   // e.g. "20m"
	RunImmediately  bool    `yaml:"run_immediately"`
}

type BithumbConfig struct {
	APIURL         string `yaml:"api_url"`
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type NaverConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Keywords     []string `yaml:"keywords"`
	Display      int      `yaml:"display"` // articles fetched per keyword
}

type AIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
}

type MarketConfig struct {
	CandleCount      int    `yaml:"candle_count"`
	OrderbookDepth   int    `yaml:"orderbook_depth"`
	PrefetchInterval string `yaml:"prefetch_interval"` // empty disables the prefetch loop
}

type StoreConfig struct {
	TradeLogPath string `yaml:"trade_log_path"`
	NewsDBPath   string `yaml:"news_db_path"`
}

type PromptConfig struct {
	Path string `yaml:"path"` // optional prompts yaml, hot-reloaded when present
}
