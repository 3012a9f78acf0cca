package signal

import (
	"math"

	"github.com/DH-11027/paradise/internal/indicator"
)

// adx returns the directional index at index over one period window.
// Needs 2x period of history; earlier indexes read as no-trend.
func adx(data []indicator.Bar, index, period int) float64 {
	if index < period*2 {
		return 0
	}

	plusDM, minusDM, tr := 0.0, 0.0, 0.0
	for i := index - period + 1; i <= index; i++ {
		cur, prev := data[i], data[i-1]

		highDiff := cur.High - prev.High
		lowDiff := prev.Low - cur.Low
		if highDiff > lowDiff && highDiff > 0 {
			plusDM += highDiff
		}
		if lowDiff > highDiff && lowDiff > 0 {
			minusDM += lowDiff
		}

		tr += math.Max(cur.High-cur.Low,
			math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
	}
	if tr == 0 {
		return 0
	}

	plusDI := plusDM / tr * 100
	minusDI := minusDM / tr * 100
	if plusDI+minusDI == 0 {
		return 0
	}
	return math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
}

// stochastic places the close inside the period's high-low range, 0-100.
func stochastic(data []indicator.Bar, index, period int) float64 {
	if index < period {
		return 50
	}

	highest, lowest := math.Inf(-1), math.Inf(1)
	for _, d := range data[index-period+1 : index+1] {
		highest = math.Max(highest, d.High)
		lowest = math.Min(lowest, d.Low)
	}
	if highest == lowest {
		return 50
	}
	return (data[index].Close - lowest) / (highest - lowest) * 100
}

// oscillatorComposite blends RSI, MFI and stochastic extremes, with a 1.5x
// boost when all three agree. Bounded in [-100, 100].
func oscillatorComposite(rsi, mfi, stoch float64) float64 {
	score := 0.0

	switch {
	case rsi < 30:
		score += 30
	case rsi < 40:
		score += 15
	case rsi > 70:
		score -= 30
	case rsi > 60:
		score -= 15
	}

	switch {
	case mfi < 20:
		score += 25
	case mfi < 35:
		score += 10
	case mfi > 80:
		score -= 25
	case mfi > 65:
		score -= 10
	}

	switch {
	case stoch < 20:
		score += 20
	case stoch < 35:
		score += 10
	case stoch > 80:
		score -= 20
	case stoch > 65:
		score -= 10
	}

	if rsi < 40 && mfi < 40 && stoch < 40 {
		score *= 1.5
	}
	if rsi > 60 && mfi > 60 && stoch > 60 {
		score *= 1.5
	}

	return clamp(score, -100, 100)
}

// volatilityAdjustedReturn is the Sharpe-style mean return over return
// volatility across the lookback window.
func volatilityAdjustedReturn(data []indicator.Bar, index, lookback int) float64 {
	if index < lookback {
		return 0
	}

	returns := make([]float64, 0, lookback)
	sum := 0.0
	for i := index - lookback + 1; i <= index; i++ {
		r := (data[i].Close - data[i-1].Close) / data[i-1].Close
		returns = append(returns, r)
		sum += r
	}
	avg := sum / float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	vol := math.Sqrt(variance / float64(len(returns)))
	if vol == 0 {
		return 0
	}
	return avg / vol
}

// marketMicrostructure combines price efficiency, the volume profile and
// an estimated spread quality into one [-1, 1] reading.
func marketMicrostructure(data []indicator.Bar, index int) float64 {
	if index < 20 {
		return 0
	}

	cur := data[index]
	prev20 := data[index-20 : index]

	score := priceEfficiency(prev20) * 0.3
	score += volumeProfile(prev20, cur) * 0.3
	score += spreadQuality(cur, prev20) * 0.4
	return score
}

// priceEfficiency compares the net move to the total path length; a high
// ratio means the price walked a straight line.
func priceEfficiency(bars []indicator.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}

	netMove := math.Abs(bars[len(bars)-1].Close - bars[0].Close)
	totalMove := 0.0
	for i := 1; i < len(bars); i++ {
		totalMove += math.Abs(bars[i].Close - bars[i-1].Close)
	}
	if totalMove == 0 {
		return 0
	}

	efficiency := netMove / totalMove
	switch {
	case efficiency > 0.7:
		return 1
	case efficiency > 0.3:
		return 0.5
	default:
		return -0.5
	}
}

// volumeProfile rewards normal volume, scores surges by price direction
// and penalizes dried-up turnover.
func volumeProfile(historical []indicator.Bar, cur indicator.Bar) float64 {
	avgVolume := meanVolume(historical)
	ratio := cur.Volume / avgVolume

	switch {
	case ratio >= 0.8 && ratio <= 2:
		return 0.5
	case ratio > 3:
		if cur.Close > historical[len(historical)-1].Close {
			return 1
		}
		return -1
	case ratio < 0.5:
		return -0.5
	}
	return 0
}

// spreadQuality uses the high-low range against the recent average as a
// liquidity proxy.
func spreadQuality(cur indicator.Bar, historical []indicator.Bar) float64 {
	avgRange := 0.0
	for _, d := range historical {
		avgRange += d.High - d.Low
	}
	avgRange /= float64(len(historical))

	currentRange := cur.High - cur.Low
	switch {
	case currentRange < avgRange*0.7:
		return 1
	case currentRange < avgRange:
		return 0.5
	case currentRange > avgRange*1.5:
		return -1
	}
	return 0
}

// riskAdjustment scales signal conviction by recent realized volatility.
func riskAdjustment(data []indicator.Bar, index int) float64 {
	if index < 60 {
		return 1
	}

	vol := volatility(data[index-20 : index])
	switch {
	case vol > 0.03:
		return 0.7
	case vol > 0.02:
		return 0.85
	case vol < 0.01:
		return 1.1
	}
	return 1
}

// advancedTechnicalSignal composes momentum quality, MACD histogram
// acceleration, volume-price confirmation and range position. Needs 60
// bars of history.
func advancedTechnicalSignal(data []indicator.Bar, index int) float64 {
	if index < 60 || index >= len(data) {
		return 0
	}

	cur := data[index]
	prev := data[index-1]
	score := 0.0

	rsi, rsiPrev := 50.0, 50.0
	if cur.RSI14 != nil {
		rsi = *cur.RSI14
	}
	if prev.RSI14 != nil {
		rsiPrev = *prev.RSI14
	}
	rsiSlope := rsi - rsiPrev

	switch {
	case rsi < 30 && rsiSlope > 0:
		score += 20
	case rsi > 70 && rsiSlope < 0:
		score -= 20
	case rsi > 50 && rsi < 70 && rsiSlope > 0:
		score += 10
	case rsi < 50 && rsi > 30 && rsiSlope < 0:
		score -= 10
	}

	if cur.MACDHist != nil && prev.MACDHist != nil && *cur.MACDHist != 0 && *prev.MACDHist != 0 {
		accel := *cur.MACDHist - *prev.MACDHist
		score += clamp(accel*100, -15, 15)
	}

	volMA := meanVolume(data[index-10 : index])
	priceChange := (cur.Close - prev.Close) / prev.Close
	volRatio := cur.Volume / volMA
	switch {
	case priceChange > 0 && volRatio > 1.5:
		score += 15
	case priceChange < 0 && volRatio > 1.5:
		score -= 15
	case math.Abs(priceChange) > 0.02 && volRatio < 0.7:
		score -= 10
	}

	high20, low20 := math.Inf(-1), math.Inf(1)
	for _, d := range data[index-20 : index] {
		high20 = math.Max(high20, d.High)
		low20 = math.Min(low20, d.Low)
	}
	if r := high20 - low20; r > 0 {
		position := (cur.Close - low20) / r
		if position < 0.2 {
			score += 10
		} else if position > 0.8 {
			score -= 10
		}
	}

	return score
}
