package trader

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bitgyeol/internal/decision"
	"bitgyeol/internal/gateway/bithumb"
	"bitgyeol/internal/logger"
)

// ExecutionStatus is the executor's verdict for one decision text.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "SUCCESS"
	StatusSkip    ExecutionStatus = "SKIP"
)

// ExecutionResult describes what the executor did. A SKIP result means the
// text carried no actionable order or the computed size was below the
// exchange minimum.
type ExecutionResult struct {
	Status      ExecutionStatus
	Type        RecordKind
	Quantity    float64
	Price       float64
	TotalAmount float64
	OrderID     string
}

// OrderPlacer is the signed exchange surface the executor needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, symbol string, side bithumb.OrderSide, units, price decimal.Decimal) (string, error)
}

// Bithumb rejects orders below the per-coin minimum unit, so quantities are
// floored to it before submission.
var minTradeUnits = map[string]decimal.Decimal{
	"BTC": decimal.RequireFromString("0.0001"),
	"ETH": decimal.RequireFromString("0.001"),
	"XRP": decimal.RequireFromString("1"),
}

var defaultMinTradeUnit = decimal.RequireFromString("0.0001")

func minTradeUnit(symbol string) decimal.Decimal {
	if u, ok := minTradeUnits[strings.ToUpper(symbol)]; ok {
		return u
	}
	return defaultMinTradeUnit
}

// Executor sizes and places orders. Investment is the per-cycle KRW cap;
// the decision text's stated ratio scales within it.
type Executor struct {
	client        OrderPlacer
	symbol        string
	investmentCap decimal.Decimal
}

func NewExecutor(client OrderPlacer, symbol string, investmentKRW float64) *Executor {
	return &Executor{
		client:        client,
		symbol:        strings.ToUpper(symbol),
		investmentCap: decimal.NewFromFloat(investmentKRW),
	}
}

// Execute places at most one order for the decision text. Balance and price
// come from the caller so the gate's checks and the order use the same data.
func (e *Executor) Execute(ctx context.Context, text string, sig decision.Signal, bal *bithumb.Balance, price decimal.Decimal) (*ExecutionResult, error) {
	switch sig {
	case decision.SignalBuy:
		return e.buy(ctx, text, bal, price)
	case decision.SignalSell:
		return e.sell(ctx, text, bal, price)
	default:
		logger.Warnf("decision text carries no actionable keyword, skipping execution")
		return &ExecutionResult{Status: StatusSkip}, nil
	}
}

func (e *Executor) buy(ctx context.Context, text string, bal *bithumb.Balance, price decimal.Decimal) (*ExecutionResult, error) {
	if price.IsZero() {
		return nil, fmt.Errorf("buy blocked: current price is zero")
	}
	ratio := decimal.NewFromFloat(decision.ParseInvestmentRatio(text))
	amount := e.investmentCap.Mul(ratio)
	if bal.AvailableKRW.LessThan(amount) {
		amount = bal.AvailableKRW
	}
	qty := floorToUnit(amount.Div(price), minTradeUnit(e.symbol))
	if qty.IsZero() {
		logger.Warnf("buy skipped: %s KRW buys less than the minimum %s unit", amount.StringFixed(0), e.symbol)
		return &ExecutionResult{Status: StatusSkip}, nil
	}

	orderID, err := e.client.PlaceOrder(ctx, e.symbol, bithumb.OrderSideBid, qty, price)
	if err != nil {
		return nil, fmt.Errorf("buy order failed: %w", err)
	}
	total := qty.Mul(price)
	logger.Infof("buy order placed: id=%s qty=%s price=%s total=%s KRW",
		orderID, qty.String(), price.String(), total.StringFixed(0))
	return &ExecutionResult{
		Status:      StatusSuccess,
		Type:        RecordBuy,
		Quantity:    qty.InexactFloat64(),
		Price:       price.InexactFloat64(),
		TotalAmount: total.InexactFloat64(),
		OrderID:     orderID,
	}, nil
}

// sell liquidates the full available holdings. The stated investment ratio
// scales buys only.
func (e *Executor) sell(ctx context.Context, _ string, bal *bithumb.Balance, price decimal.Decimal) (*ExecutionResult, error) {
	qty := floorToUnit(bal.AvailableCoin, minTradeUnit(e.symbol))
	if qty.IsZero() {
		logger.Warnf("sell skipped: %s holdings below the minimum trade unit", e.symbol)
		return &ExecutionResult{Status: StatusSkip}, nil
	}

	orderID, err := e.client.PlaceOrder(ctx, e.symbol, bithumb.OrderSideAsk, qty, price)
	if err != nil {
		return nil, fmt.Errorf("sell order failed: %w", err)
	}
	total := qty.Mul(price)
	logger.Infof("sell order placed: id=%s qty=%s price=%s total=%s KRW",
		orderID, qty.String(), price.String(), total.StringFixed(0))
	return &ExecutionResult{
		Status:      StatusSuccess,
		Type:        RecordSell,
		Quantity:    qty.InexactFloat64(),
		Price:       price.InexactFloat64(),
		TotalAmount: total.InexactFloat64(),
		OrderID:     orderID,
	}, nil
}

// floorToUnit rounds qty down to a whole multiple of unit.
func floorToUnit(qty, unit decimal.Decimal) decimal.Decimal {
	if qty.LessThan(unit) {
		return decimal.Zero
	}
	return qty.Div(unit).Floor().Mul(unit)
}
