// Package trader is the trade gate: it turns a final decision text into at
// most one exchange order and exactly one persisted Decision Record.
package trader

import (
	"fmt"
	"strings"
	"time"
)

// RecordKind labels the outcome of one gate pass.
type RecordKind string

const (
	RecordHold    RecordKind = "HOLD"
	RecordBuy     RecordKind = "BUY"
	RecordSell    RecordKind = "SELL"
	RecordCantBuy RecordKind = "CANT_BUY"
)

// Record is one Decision Record. Non-trading outcomes carry a synthetic
// order id so every record stays addressable the same way.
type Record struct {
	Kind        RecordKind
	Quantity    float64
	Price       float64
	TotalAmount float64
	OrderID     string
	Timestamp   time.Time
}

func syntheticOrderID(kind RecordKind, ts time.Time) string {
	return fmt.Sprintf("%s_%d", strings.ToLower(string(kind)), ts.UnixMilli())
}

func holdRecord(ts time.Time, price float64) Record {
	return Record{
		Kind:      RecordHold,
		Price:     price,
		OrderID:   syntheticOrderID(RecordHold, ts),
		Timestamp: ts,
	}
}

func cantBuyRecord(ts time.Time, price float64) Record {
	return Record{
		Kind:      RecordCantBuy,
		Price:     price,
		OrderID:   syntheticOrderID(RecordCantBuy, ts),
		Timestamp: ts,
	}
}
