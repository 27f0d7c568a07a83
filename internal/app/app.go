// Package app wires configuration into the running service: the decision
// pipeline on its schedule, the trade gate, and the admin HTTP surface.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"bitgyeol/internal/config"
	"bitgyeol/internal/decision"
	"bitgyeol/internal/logger"
	"bitgyeol/internal/market"
	"bitgyeol/internal/prompt"
	"bitgyeol/internal/scheduler"
	"bitgyeol/internal/store/newsdb"
	"bitgyeol/internal/store/tradelog"
	"bitgyeol/internal/trader"
	adminhttp "bitgyeol/internal/transport/http"
)

type App struct {
	cfg       *config.Config
	pipeline  *decision.Pipeline
	gate      *trader.Gate
	market    *market.Service
	prompts   *prompt.Registry
	adminHTTP *adminhttp.Server
	tradeLog  *tradelog.Store
	newsDB    *newsdb.Store
}

// NewApp builds the application object from configuration without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run starts the admin HTTP server, the optional market prefetcher and the
// decision cycle, blocking until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.adminHTTP != nil {
		group.Go(func() error {
			if err := a.adminHTTP.Start(ctx); err != nil {
				return fmt.Errorf("admin http server error: %w", err)
			}
			return nil
		})
	}

	if raw := a.cfg.Market.PrefetchInterval; raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			group.Go(func() error {
				a.market.StartPrefetcher(ctx, d)
				return nil
			})
		} else {
			logger.Warnf("invalid prefetch_interval %q, prefetcher disabled", raw)
		}
	}

	group.Go(func() error {
		defer a.Close()
		sched := scheduler.NewIntervalScheduler(ctx, a.cfg.CycleInterval())
		sched.RunImmediately = a.cfg.Trading.RunImmediately
		sched.Start(func() error { return a.runCycle(ctx) })
		return nil
	})

	return group.Wait()
}

// runCycle is one full decision cycle: pipeline, then trade gate. Any
// failure aborts the cycle without a Decision Record; the scheduler logs it
// and waits for the next tick.
func (a *App) runCycle(ctx context.Context) error {
	run, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	text, ok := a.pipeline.FinalText(run)
	if !ok {
		return fmt.Errorf("run %s finished without a final decision", run.TraceID)
	}

	// The snapshot is cached on the run context, so this is the same data
	// every stage saw.
	snap, err := run.MarketData(ctx)
	if err != nil {
		return fmt.Errorf("run %s: snapshot unavailable for the trade gate: %w", run.TraceID, err)
	}

	rec, err := a.gate.Apply(ctx, text, snap.CurrentPrice)
	if err != nil {
		return fmt.Errorf("run %s: %w", run.TraceID, err)
	}
	logger.Infof("run %s: cycle closed with %s record (order=%s)", run.TraceID, rec.Kind, rec.OrderID)
	return nil
}

// Close releases the store handles. Safe to call more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.tradeLog != nil {
		if err := a.tradeLog.Close(); err != nil {
			logger.Warnf("closing trade log store: %v", err)
		}
		a.tradeLog = nil
	}
	if a.newsDB != nil {
		if err := a.newsDB.Close(); err != nil {
			logger.Warnf("closing news store: %v", err)
		}
		a.newsDB = nil
	}
}
