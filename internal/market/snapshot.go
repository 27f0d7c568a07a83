// Package market builds the per-run snapshot of price, order book and
// multi-timeframe technical indicators. A snapshot is read-only for the
// duration of a decision run; the pipeline never refetches one mid-run.
package market

import (
	"time"

	"bitgyeol/internal/gateway/bithumb"
)

// FrameAnalysis holds the indicator set for one timeframe. When fewer than
// the required number of candles were available, only ChangeRate is set and
// HasIndicators stays false.
type FrameAnalysis struct {
	ChangeRate    float64
	HasIndicators bool

	RSI            float64
	StochK         float64
	StochD         float64
	MACD           float64
	MACDSignal     float64
	MACDHist       float64
	BollUpper      float64
	BollMiddle     float64
	BollLower      float64
	MovingAverages map[int]float64 // SMA keyed by period
	EMA            map[int]float64
	WMA            map[int]float64
	ATR            float64
	OBV            float64
	VWAP           float64
	MFI            float64
	WilliamsR      float64
	CCI            float64
	PlusDI         float64
	MinusDI        float64
	ADX            float64
	Volume         float64 // latest bar volume
}

// Snapshot is the immutable-for-the-run market view.
type Snapshot struct {
	Timestamp    time.Time
	Market       string // e.g. "BTC_KRW"
	CurrentPrice float64
	Orderbook    bithumb.Orderbook
	// Frames is keyed by "1m".."60m" plus "24h" (change rate only).
	Frames map[string]FrameAnalysis
}

// Frame returns the analysis for key, zero-valued if absent.
func (s *Snapshot) Frame(key string) FrameAnalysis {
	if s == nil || s.Frames == nil {
		return FrameAnalysis{}
	}
	return s.Frames[key]
}

// TopBids returns up to n bid levels.
func (s *Snapshot) TopBids(n int) []bithumb.OrderbookLevel {
	if s == nil || n <= 0 || n > len(s.Orderbook.Bids) {
		if s == nil {
			return nil
		}
		return s.Orderbook.Bids
	}
	return s.Orderbook.Bids[:n]
}

// TopAsks returns up to n ask levels.
func (s *Snapshot) TopAsks(n int) []bithumb.OrderbookLevel {
	if s == nil || n <= 0 || n > len(s.Orderbook.Asks) {
		if s == nil {
			return nil
		}
		return s.Orderbook.Asks
	}
	return s.Orderbook.Asks[:n]
}
