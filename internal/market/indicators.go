package market

import (
	"math"

	"github.com/markcheno/go-talib"

	"bitgyeol/internal/gateway/bithumb"
)

// minIndicatorBars is the candle depth required before indicators are
// computed for a timeframe. Below this only the change rate is reported.
const minIndicatorBars = 200

var smaPeriods = []int{5, 10, 20, 50, 200}

// computeFrame builds the indicator set for one timeframe from newest-first
// candles. unit is the timeframe length in bars used for the change-rate
// comparison offset.
func computeFrame(candles []bithumb.Candle, unit int) FrameAnalysis {
	fa := FrameAnalysis{}
	if len(candles) == 0 {
		return fa
	}

	nowPrice := candles[0].Close
	cmpIdx := unit
	if cmpIdx > len(candles)-1 {
		cmpIdx = len(candles) - 1
	}
	if open := candles[cmpIdx].Open; open > 0 {
		fa.ChangeRate = (nowPrice - open) / open * 100
	}
	fa.Volume = candles[0].Volume

	if len(candles) < minIndicatorBars {
		return fa
	}

	// talib wants oldest-first series.
	n := minIndicatorBars
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		c := candles[n-1-i]
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	fa.HasIndicators = true
	fa.RSI = last(talib.Rsi(closes, 14))

	k, d := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)
	fa.StochK = last(k)
	fa.StochD = last(d)

	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	fa.MACD = last(macd)
	fa.MACDSignal = last(signal)
	fa.MACDHist = last(hist)

	upper, middle, lower := talib.BBands(closes, 20, 2, 2, talib.SMA)
	fa.BollUpper = last(upper)
	fa.BollMiddle = last(middle)
	fa.BollLower = last(lower)

	fa.MovingAverages = make(map[int]float64, len(smaPeriods))
	for _, p := range smaPeriods {
		fa.MovingAverages[p] = last(talib.Sma(closes, p))
	}
	fa.EMA = map[int]float64{
		12: last(talib.Ema(closes, 12)),
		26: last(talib.Ema(closes, 26)),
	}
	fa.WMA = map[int]float64{
		20: last(talib.Wma(closes, 20)),
	}

	fa.ATR = last(talib.Atr(highs, lows, closes, 14))
	fa.OBV = last(talib.Obv(closes, volumes))
	fa.VWAP = vwap(highs, lows, closes, volumes)
	fa.MFI = last(talib.Mfi(highs, lows, closes, volumes, 14))
	fa.WilliamsR = last(talib.WillR(highs, lows, closes, 14))
	fa.CCI = last(talib.Cci(highs, lows, closes, 20))
	fa.PlusDI = last(talib.PlusDI(highs, lows, closes, 14))
	fa.MinusDI = last(talib.MinusDI(highs, lows, closes, 14))
	fa.ADX = last(talib.Adx(highs, lows, closes, 14))

	return fa
}

// vwap is not in talib; typical price weighted by volume over the window.
func vwap(highs, lows, closes, volumes []float64) float64 {
	var pv, vol float64
	for i := range closes {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		pv += typical * volumes[i]
		vol += volumes[i]
	}
	if vol == 0 {
		return 0
	}
	return pv / vol
}

func last(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}
