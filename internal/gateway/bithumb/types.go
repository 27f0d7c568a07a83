// Package bithumb wraps the Bithumb REST API surface bitgyeol needs:
// public market data plus the signed balance/order endpoints.
package bithumb

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker mirrors /public/ticker for one market.
type Ticker struct {
	Market          string
	ClosingPrice    float64
	OpeningPrice    float64
	MaxPrice        float64
	MinPrice        float64
	UnitsTraded24H  float64
	Fluctate24H     float64
	FluctateRate24H float64
	FetchedAt       time.Time
}

// OrderbookLevel is one price level of the book.
type OrderbookLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Orderbook holds the top-N bid/ask levels.
type Orderbook struct {
	Bids []OrderbookLevel `json:"bids"`
	Asks []OrderbookLevel `json:"asks"`
}

// Candle is one OHLCV bar from the v1 candle endpoints.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Balance is the signed /info/balance response for one coin.
// Amounts stay decimal until the trade gate is done with them.
type Balance struct {
	AvailableKRW  decimal.Decimal
	AvailableCoin decimal.Decimal
	LastPrice     decimal.Decimal
}

// OrderSide is Bithumb's order direction ("bid" buys, "ask" sells).
type OrderSide string

const (
	OrderSideBid OrderSide = "bid"
	OrderSideAsk OrderSide = "ask"
)
