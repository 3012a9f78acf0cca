// Package signal implements the smart-money analytics: market regime
// detection, the institutional smart-money score, composite trading
// signals, pattern recognition and the walk-forward backtester.
package signal

import (
	"math"

	"github.com/DH-11027/paradise/internal/indicator"
)

// Regime classifies the current market environment.
type Regime string

const (
	RegimeUnknown    Regime = "UNKNOWN"
	RegimeBull       Regime = "BULL_TRENDING"
	RegimeBear       Regime = "BEAR_TRENDING"
	RegimeHighVol    Regime = "HIGH_VOLATILITY"
	RegimeRangeBound Regime = "RANGE_BOUND"
	RegimeBreakout   Regime = "BREAKOUT_POTENTIAL"
	RegimeTransition Regime = "TRANSITIONING"
)

// DetectMarketRegime classifies the environment at index from trend
// strength against the 60-day mean, 20 vs 60 day momentum, annualized
// 20-day volatility and the volume trend. Under 10 bars of history the
// regime is UNKNOWN.
func DetectMarketRegime(data []indicator.Bar, index int) Regime {
	if index < 10 || index >= len(data) {
		return RegimeUnknown
	}

	prev20 := window(data, index, 20)
	prev60 := window(data, index, 60)

	ma20 := meanClose(prev20)
	ma60 := meanClose(prev60)
	price := data[index].Close

	trendStrength := (price - ma60) / ma60
	momentum := (ma20 - ma60) / ma60

	vol20 := rmsReturn(prev20) * math.Sqrt(252)

	avgVol20 := meanVolume(prev20)
	avgVol60 := meanVolume(prev60)
	volumeTrend := (avgVol20 - avgVol60) / avgVol60

	switch {
	case trendStrength > 0.1 && momentum > 0.05 && vol20 < 0.3:
		return RegimeBull
	case trendStrength < -0.1 && momentum < -0.05:
		return RegimeBear
	case vol20 > 0.4:
		return RegimeHighVol
	case math.Abs(trendStrength) < 0.05 && vol20 < 0.2:
		return RegimeRangeBound
	case volumeTrend > 0.5 && math.Abs(trendStrength) > 0.05:
		return RegimeBreakout
	default:
		return RegimeTransition
	}
}

// Institutional activity phases.
const (
	PhaseUnknown       = "UNKNOWN"
	PhaseAccumulation  = "ACCUMULATION"
	PhaseDistribution  = "DISTRIBUTION"
	PhaseConsolidation = "CONSOLIDATION"
	PhaseMarkup        = "MARKUP"
	PhaseMarkdown      = "MARKDOWN"
	PhaseNeutral       = "NEUTRAL"
)

// Activity is the detected institutional accumulation/distribution phase.
type Activity struct {
	Phase    string  `json:"phase"`
	Strength float64 `json:"strength"`
}

// detectInstitutionalActivity reads volume-price behavior together with
// the day's smart-money net flow. Needs 20 prior bars.
func detectInstitutionalActivity(data []indicator.Bar, index int) Activity {
	if index < 20 || index >= len(data) {
		return Activity{Phase: PhaseUnknown}
	}

	cur := data[index]
	prev20 := data[index-20 : index]

	avgVolume := meanVolume(prev20)
	volumeRatio := cur.Volume / avgVolume

	priceChange := (cur.Close - prev20[0].Close) / prev20[0].Close
	dailyRange := (cur.High - cur.Low) / cur.Close

	smartMoney := cur.Flows.ForeignTotal + cur.Flows.InstitutionTotal

	switch {
	case volumeRatio > 2 && smartMoney > 0 && dailyRange < 0.02:
		return Activity{Phase: PhaseAccumulation, Strength: math.Min(100, volumeRatio*25)}
	case volumeRatio > 1.5 && smartMoney < 0 && priceChange < -0.01:
		return Activity{Phase: PhaseDistribution, Strength: math.Min(100, volumeRatio*20)}
	case volumeRatio < 0.5 && math.Abs(priceChange) < 0.01:
		return Activity{Phase: PhaseConsolidation, Strength: 30}
	case smartMoney > 0 && priceChange > 0:
		return Activity{Phase: PhaseMarkup, Strength: 50}
	case smartMoney < 0 && priceChange < 0:
		return Activity{Phase: PhaseMarkdown, Strength: 50}
	}
	return Activity{Phase: PhaseNeutral}
}

// orderFlowImbalance estimates buy/sell pressure from the close position
// against each bar's typical price, volume weighted over the last 5 bars.
// Bounded in [-1, 1].
func orderFlowImbalance(data []indicator.Bar, index int) float64 {
	if index < 5 || index >= len(data) {
		return 0
	}

	buy, sell := 0.0, 0.0
	for _, d := range data[index-4 : index+1] {
		vwap := (d.High + d.Low + d.Close) / 3
		pressure := (d.Close - vwap) / vwap
		if pressure > 0 {
			buy += pressure * d.Volume
		} else {
			sell += -pressure * d.Volume
		}
	}

	total := buy + sell
	if total == 0 {
		return 0
	}
	return (buy - sell) / total
}

// window returns up to n bars ending at index, inclusive.
func window(data []indicator.Bar, index, n int) []indicator.Bar {
	lookback := n
	if index+1 < n {
		lookback = index + 1
	}
	return data[index-lookback+1 : index+1]
}

func meanClose(bars []indicator.Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}

func meanVolume(bars []indicator.Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}

// rmsReturn is the root mean square of bar-to-bar returns.
func rmsReturn(bars []indicator.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(bars); i++ {
		r := (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(bars)-1))
}

// volatility is the standard deviation of bar-to-bar returns.
func volatility(bars []indicator.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(bars)-1)
	sum := 0.0
	for i := 1; i < len(bars); i++ {
		r := (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
		returns = append(returns, r)
		sum += r
	}
	avg := sum / float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	return math.Sqrt(variance / float64(len(returns)))
}

func smartFlow(b indicator.Bar) float64 {
	return b.Flows.ForeignTotal + b.Flows.InstitutionTotal
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
