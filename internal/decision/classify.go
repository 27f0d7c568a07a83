package decision

import (
	"regexp"
	"strconv"
	"strings"
)

// Signal is the deterministic classification of free-form decision text.
type Signal int

const (
	SignalUnknown Signal = iota
	SignalHold
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalHold:
		return "HOLD"
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Decision keywords the model is instructed to emit.
const (
	KeywordHold = "관망"
	KeywordBuy  = "매수"
	KeywordSell = "매도"
)

// Reconciliation weighting, expressed to the model as a prompt instruction
// rather than computed arithmetically. Changing these changes the policy the
// model is asked to apply, nothing more.
const (
	NewsWeight  = 7
	PriceWeight = 3
)

// Classify maps decision text to a signal by substring match. The hold
// keyword wins over anything else in the text, because a hedging model may
// mention buy or sell scenarios while still recommending to wait.
func Classify(text string) Signal {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, KeywordHold):
		return SignalHold
	case strings.Contains(t, KeywordBuy):
		return SignalBuy
	case strings.Contains(t, KeywordSell):
		return SignalSell
	default:
		return SignalUnknown
	}
}

var investmentRatioRe = regexp.MustCompile(`투자 비중:\s*(\d+)\s*%`)

// DefaultInvestmentRatio applies when the decision text does not state one.
const DefaultInvestmentRatio = 0.5

// ParseInvestmentRatio extracts the "투자 비중: N%" figure as a 0..1 ratio.
func ParseInvestmentRatio(text string) float64 {
	m := investmentRatioRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return DefaultInvestmentRatio
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return DefaultInvestmentRatio
	}
	return float64(n) / 100
}
