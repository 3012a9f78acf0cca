package indicator

import "math"

// enrichChart attaches the chart overlay set: MA 5/20/60/120, Bollinger
// bands (20, 2σ), RSI(14) with Wilder smoothing, and MACD(12,26,9).
func enrichChart(data []Bar) {
	closes := make([]float64, len(data))
	for i := range data {
		closes[i] = data[i].Close
	}

	ma5 := sma(closes, 5)
	ma20 := sma(closes, 20)
	ma60 := sma(closes, 60)
	ma120 := sma(closes, 120)
	bbUp, bbMid, bbLow := bollinger(closes, 20, 2)
	rsi := rsiWilder(closes, period14)
	macd, signal, hist := macdLines(closes, 12, 26, 9)

	for i := range data {
		data[i].MA5 = ma5[i]
		data[i].MA20 = ma20[i]
		data[i].MA60 = ma60[i]
		data[i].MA120 = ma120[i]
		data[i].BBUpper = bbUp[i]
		data[i].BBMiddle = bbMid[i]
		data[i].BBLower = bbLow[i]
		data[i].RSI14 = rsi[i]
		data[i].MACD = macd[i]
		data[i].MACDSignal = signal[i]
		data[i].MACDHist = hist[i]
	}
}

// sma is a simple moving average, nil until period-1 values are available.
func sma(values []float64, period int) []*float64 {
	out := make([]*float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = ptr(sum / float64(period))
		}
	}
	return out
}

// ema seeds with the SMA of the first period values, then applies the
// standard 2/(period+1) multiplier.
func ema(values []float64, period int) []*float64 {
	out := make([]*float64, len(values))
	if len(values) < period {
		return out
	}
	mult := 2 / (float64(period) + 1)
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = ptr(seed)
	prev := seed
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*mult + prev
		out[i] = ptr(prev)
	}
	return out
}

func bollinger(closes []float64, period int, width float64) (upper, middle, lower []*float64) {
	mid := sma(closes, period)
	upper = make([]*float64, len(closes))
	lower = make([]*float64, len(closes))
	for i := period - 1; i < len(closes); i++ {
		mean := *mid[i]
		variance := 0.0
		for k := i - period + 1; k <= i; k++ {
			d := closes[k] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(period))
		upper[i] = ptr(mean + width*std)
		lower[i] = ptr(mean - width*std)
	}
	return upper, mid, lower
}

// rsiWilder is RSI with Wilder smoothing: the first value at index period
// averages the initial gains/losses, later values decay with (period-1)/period.
func rsiWilder(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if len(closes) <= period {
		return out
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	rsiAt := func(gain, loss float64) float64 {
		rs := 100.0
		if loss != 0 {
			rs = gain / loss
		}
		return 100 - 100/(1+rs)
	}

	out[period] = ptr(rsiAt(avgGain, avgLoss))
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = ptr(rsiAt(avgGain, avgLoss))
	}
	return out
}

// macdLines returns the MACD line (fast EMA minus slow EMA), its signal
// EMA aligned to the same bars, and the histogram.
func macdLines(closes []float64, fast, slow, signalPeriod int) (macd, signal, hist []*float64) {
	n := len(closes)
	macd = make([]*float64, n)
	signal = make([]*float64, n)
	hist = make([]*float64, n)

	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)
	macdVals := make([]float64, 0, n)
	for i := slow - 1; i < n; i++ {
		v := *emaFast[i] - *emaSlow[i]
		macd[i] = ptr(v)
		macdVals = append(macdVals, v)
	}

	signalEMA := ema(macdVals, signalPeriod)
	for j, s := range signalEMA {
		if s == nil {
			continue
		}
		i := slow - 1 + j
		signal[i] = s
		hist[i] = ptr(*macd[i] - *s)
	}
	return macd, signal, hist
}
