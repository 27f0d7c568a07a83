package app

import (
	"context"
	"fmt"
	"time"

	"bitgyeol/internal/config"
	"bitgyeol/internal/decision"
	"bitgyeol/internal/gateway/bithumb"
	"bitgyeol/internal/gateway/naver"
	"bitgyeol/internal/gateway/provider"
	"bitgyeol/internal/logger"
	"bitgyeol/internal/market"
	"bitgyeol/internal/news"
	"bitgyeol/internal/prompt"
	"bitgyeol/internal/store/newsdb"
	"bitgyeol/internal/store/tradelog"
	"bitgyeol/internal/trader"
	adminhttp "bitgyeol/internal/transport/http"
)

// AppBuilder assembles the full dependency graph from configuration. The
// per-concern constructors are swappable so tests can stub the edges.
type AppBuilder struct {
	cfg *config.Config

	promptRegistryFn func(string) (*prompt.Registry, error)
	tradeLogFn       func(string) (*tradelog.Store, error)
	newsDBFn         func(string) (*newsdb.Store, error)
	signedClientFn   func(config.BithumbConfig) (*bithumb.Client, error)
	naverClientFn    func(string, string) (*naver.Client, error)
	adminHTTPFn      func(adminhttp.ServerConfig) (*adminhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:              cfg,
		promptRegistryFn: prompt.NewRegistry,
		tradeLogFn:       tradelog.New,
		newsDBFn:         newsdb.New,
		signedClientFn:   bithumb.NewClient,
		naverClientFn:    naver.NewClient,
		adminHTTPFn:      adminhttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	prompts, err := b.promptRegistryFn(cfg.Prompt.Path)
	if err != nil {
		return nil, fmt.Errorf("prompt registry: %w", err)
	}

	tradeLog, err := b.tradeLogFn(cfg.Store.TradeLogPath)
	if err != nil {
		return nil, fmt.Errorf("trade log store: %w", err)
	}
	newsDB, err := b.newsDBFn(cfg.Store.NewsDBPath)
	if err != nil {
		return nil, fmt.Errorf("news store: %w", err)
	}
	logger.Infof("✓ stores ready: trades=%s news=%s", cfg.Store.TradeLogPath, cfg.Store.NewsDBPath)

	publicClient := bithumb.NewPublicClient(cfg.Bithumb.APIURL,
		time.Duration(cfg.Bithumb.TimeoutSeconds)*time.Second)
	signedClient, err := b.signedClientFn(cfg.Bithumb)
	if err != nil {
		return nil, fmt.Errorf("bithumb client: %w", err)
	}
	naverClient, err := b.naverClientFn(cfg.Naver.ClientID, cfg.Naver.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("naver client: %w", err)
	}

	marketSvc := market.NewService(publicClient, cfg.Trading.Symbol,
		cfg.Market.CandleCount, cfg.Market.OrderbookDepth)
	newsSvc := news.NewService(naverClient, newsDB, cfg.Naver.Keywords, cfg.Naver.Display)

	model := &provider.OpenAIChatClient{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		MaxRetries:  cfg.AI.MaxRetries,
	}
	logger.Infof("✓ model client ready: model=%s base_url=%s", cfg.AI.Model, cfg.AI.BaseURL)

	pipeline := decision.NewPipeline(marketSvc,
		&decision.NewsStage{Model: model, Feed: newsSvc, Prompts: prompts, Audit: tradeLog},
		&decision.PriceStage{Model: model, Prompts: prompts, Audit: tradeLog},
		&decision.FinalStage{Model: model, Prompts: prompts, Audit: tradeLog},
	)

	executor := trader.NewExecutor(signedClient, cfg.Trading.Symbol, cfg.Trading.Investment)
	gate := trader.NewGate(executor, signedClient, tradeLog, cfg.Trading.Symbol, cfg.Trading.MinBuyKRW)

	var adminSrv *adminhttp.Server
	if cfg.App.HTTPAddr != "" {
		adminSrv, err = b.adminHTTPFn(adminhttp.ServerConfig{Addr: cfg.App.HTTPAddr, Logs: tradeLog})
		if err != nil {
			return nil, fmt.Errorf("admin http server: %w", err)
		}
		logger.Infof("✓ admin http listening on %s", adminSrv.Addr())
	}

	return &App{
		cfg:       cfg,
		pipeline:  pipeline,
		gate:      gate,
		market:    marketSvc,
		prompts:   prompts,
		adminHTTP: adminSrv,
		tradeLog:  tradeLog,
		newsDB:    newsDB,
	}, nil
}
