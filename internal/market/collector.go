package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bitgyeol/internal/gateway/bithumb"
	"bitgyeol/internal/logger"
)

// candleUnits are the minute timeframes collected per snapshot.
var candleUnits = []int{1, 3, 5, 10, 15, 30, 60}

// publicAPI is the slice of the Bithumb public client the collector needs.
type publicAPI interface {
	Ticker(ctx context.Context, symbol string) (*bithumb.Ticker, error)
	Orderbook(ctx context.Context, symbol string, count int) (*bithumb.Orderbook, error)
	MinuteCandles(ctx context.Context, symbol string, unit, count int) ([]bithumb.Candle, error)
	DailyCandles(ctx context.Context, symbol string, count int) ([]bithumb.Candle, error)
}

// Service collects market snapshots. A prefetch loop may keep a recent
// snapshot warm; Collect drains that before hitting the API.
type Service struct {
	client         publicAPI
	symbol         string
	candleCount    int
	orderbookDepth int

	mu         sync.Mutex
	prefetched *Snapshot
}

func NewService(client publicAPI, symbol string, candleCount, orderbookDepth int) *Service {
	if candleCount <= 0 {
		candleCount = 200
	}
	if orderbookDepth <= 0 {
		orderbookDepth = 5
	}
	return &Service{
		client:         client,
		symbol:         strings.ToUpper(symbol),
		candleCount:    candleCount,
		orderbookDepth: orderbookDepth,
	}
}

// Collect returns a snapshot: the prefetched one when available, otherwise a
// fresh collection. The ticker is mandatory; individual timeframes degrade to
// change-rate-only entries on failure.
func (s *Service) Collect(ctx context.Context) (*Snapshot, error) {
	if snap := s.takePrefetched(); snap != nil {
		return snap, nil
	}
	return s.collectFresh(ctx)
}

// Offer stores a snapshot for the next Collect call to pick up.
func (s *Service) Offer(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.prefetched = snap
	s.mu.Unlock()
}

func (s *Service) takePrefetched() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.prefetched
	s.prefetched = nil
	return snap
}

// StartPrefetcher refreshes the warm snapshot on a fixed interval until ctx
// is done. Failures are logged and the loop keeps going.
func (s *Service) StartPrefetcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		snap, err := s.collectFresh(ctx)
		if err != nil {
			logger.Warnf("market prefetch failed: %v", err)
			continue
		}
		s.Offer(snap)
	}
}

func (s *Service) collectFresh(ctx context.Context) (*Snapshot, error) {
	ticker, err := s.client.Ticker(ctx, s.symbol)
	if err != nil {
		return nil, fmt.Errorf("market data unavailable: %w", err)
	}

	snap := &Snapshot{
		Timestamp:    time.Now(),
		Market:       s.symbol + "_KRW",
		CurrentPrice: ticker.ClosingPrice,
		Frames:       make(map[string]FrameAnalysis, len(candleUnits)+1),
	}

	if ob, err := s.client.Orderbook(ctx, s.symbol, s.orderbookDepth); err != nil {
		logger.Warnf("orderbook fetch failed, snapshot continues without book: %v", err)
	} else {
		snap.Orderbook = *ob
	}

	// Timeframes are independent of each other; fetch them concurrently.
	// The decision pipeline itself stays strictly sequential.
	var framesMu sync.Mutex
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, unit := range candleUnits {
		unit := unit
		group.Go(func() error {
			key := strconv.Itoa(unit) + "m"
			candles, err := s.client.MinuteCandles(gctx, s.symbol, unit, s.candleCount)
			if err != nil {
				logger.Warnf("%s candle fetch failed: %v", key, err)
				framesMu.Lock()
				snap.Frames[key] = FrameAnalysis{}
				framesMu.Unlock()
				return nil
			}
			fa := computeFrame(candles, unit)
			framesMu.Lock()
			snap.Frames[key] = fa
			framesMu.Unlock()
			return nil
		})
	}
	group.Go(func() error {
		fa := FrameAnalysis{
			ChangeRate: ticker.FluctateRate24H,
			Volume:     ticker.UnitsTraded24H,
		}
		if daily, err := s.client.DailyCandles(gctx, s.symbol, s.candleCount); err != nil {
			logger.Warnf("daily candle fetch failed: %v", err)
		} else {
			computed := computeFrame(daily, 1)
			computed.ChangeRate = ticker.FluctateRate24H
			computed.Volume = ticker.UnitsTraded24H
			fa = computed
		}
		framesMu.Lock()
		snap.Frames["24h"] = fa
		framesMu.Unlock()
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
