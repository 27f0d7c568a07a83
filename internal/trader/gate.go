package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bitgyeol/internal/decision"
	"bitgyeol/internal/gateway/bithumb"
	"bitgyeol/internal/logger"
	"bitgyeol/internal/store/tradelog"
)

// BalanceReader queries available funds before any order is risked.
type BalanceReader interface {
	Balance(ctx context.Context, symbol string) (*bithumb.Balance, error)
}

// RecordStore persists the gate's Decision Record.
type RecordStore interface {
	SaveTradeExecution(ctx context.Context, exec tradelog.TradeExecution) error
}

// Gate decides whether a final decision text results in a trade. The hold
// keyword always wins. A buy only proceeds when the available KRW clears the
// configured floor; otherwise the outcome is CANT_BUY. Any failure along the
// way blocks the trade entirely and the cycle records nothing.
type Gate struct {
	executor  *Executor
	balances  BalanceReader
	store     RecordStore
	symbol    string
	minBuyKRW decimal.Decimal
	nowFn     func() time.Time
}

func NewGate(executor *Executor, balances BalanceReader, store RecordStore, symbol string, minBuyKRW float64) *Gate {
	return &Gate{
		executor:  executor,
		balances:  balances,
		store:     store,
		symbol:    symbol,
		minBuyKRW: decimal.NewFromFloat(minBuyKRW),
		nowFn:     time.Now,
	}
}

// Apply runs one decision text through the gate and persists exactly one
// Decision Record, or returns an error and persists nothing.
func (g *Gate) Apply(ctx context.Context, text string, currentPrice float64) (*Record, error) {
	ts := g.nowFn()
	sig := decision.Classify(text)
	logger.Infof("trade gate: classified decision as %s", sig)

	switch sig {
	case decision.SignalHold:
		return g.persist(ctx, holdRecord(ts, currentPrice))

	case decision.SignalBuy, decision.SignalSell:
		// The balance read and the order below are two requests; funds can
		// move between them and the exchange has the final word.
		bal, err := g.balances.Balance(ctx, g.symbol)
		if err != nil {
			return nil, fmt.Errorf("trade blocked, balance query failed: %w", err)
		}
		if sig == decision.SignalBuy && bal.AvailableKRW.LessThan(g.minBuyKRW) {
			logger.Warnf("buy blocked: available %s KRW is under the %s KRW floor",
				bal.AvailableKRW.StringFixed(0), g.minBuyKRW.StringFixed(0))
			return g.persist(ctx, cantBuyRecord(ts, currentPrice))
		}

		res, err := g.executor.Execute(ctx, text, sig, bal, decimal.NewFromFloat(currentPrice))
		if err != nil {
			return nil, fmt.Errorf("trade blocked: %w", err)
		}
		if res.Status == StatusSkip {
			// Nothing tradable in the text or below-minimum sizing still
			// closes the cycle with a record.
			return g.persist(ctx, holdRecord(ts, currentPrice))
		}
		return g.persist(ctx, Record{
			Kind:        res.Type,
			Quantity:    res.Quantity,
			Price:       res.Price,
			TotalAmount: res.TotalAmount,
			OrderID:     res.OrderID,
			Timestamp:   ts,
		})

	default:
		logger.Warnf("decision text carries none of the expected keywords, recording hold")
		return g.persist(ctx, holdRecord(ts, currentPrice))
	}
}

func (g *Gate) persist(ctx context.Context, rec Record) (*Record, error) {
	err := g.store.SaveTradeExecution(ctx, tradelog.TradeExecution{
		Timestamp:   rec.Timestamp,
		TradeType:   string(rec.Kind),
		Quantity:    rec.Quantity,
		Price:       rec.Price,
		TotalAmount: rec.TotalAmount,
		OrderID:     rec.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("persisting %s record failed: %w", rec.Kind, err)
	}
	logger.Infof("decision record saved: kind=%s order=%s", rec.Kind, rec.OrderID)
	return &rec, nil
}
