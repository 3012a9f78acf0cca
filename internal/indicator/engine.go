// Package indicator computes the volume-flow indicators (OBV, MFI, ATR,
// anchored VWAP) and the chart overlay set (moving averages, Bollinger
// bands, RSI, MACD) over a merged price/flow series.
package indicator

import (
	"math"

	"github.com/DH-11027/paradise/internal/series"
)

const period14 = 14

// Bar is a merged bar enriched with indicator values. Pointer fields are
// nil during each indicator's warmup window; JSON renders them as null so
// chart layers can gap the line.
type Bar struct {
	series.MergedBar

	OBV float64 `json:"obv"`
	TP  float64 `json:"tp"`

	ATR14 *float64 `json:"atr14"`
	MFI14 *float64 `json:"mfi14"`
	AVWAP *float64 `json:"avwap"`

	MA5   *float64 `json:"ma5"`
	MA20  *float64 `json:"ma20"`
	MA60  *float64 `json:"ma60"`
	MA120 *float64 `json:"ma120"`

	BBUpper  *float64 `json:"bbUpper"`
	BBMiddle *float64 `json:"bbMiddle"`
	BBLower  *float64 `json:"bbLower"`

	RSI14 *float64 `json:"rsi14"`

	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macdSignal"`
	MACDHist   *float64 `json:"macdHistogram"`
}

// Result is the enriched series plus the OBV scale hint for dual-axis
// rendering.
type Result struct {
	Data   []Bar   `json:"data"`
	OBVMax float64 `json:"obvMax"`
}

// Compute derives OBV, typical price, ATR(14), MFI(14) and the anchored
// VWAP from anchorIndex in a single pass, then layers the chart overlays
// on top. The anchor is clamped into [0, len-1]; bars before it carry a
// nil AVWAP. An empty input yields an empty result, never an error.
func Compute(bars []series.MergedBar, anchorIndex int) Result {
	if len(bars) == 0 {
		return Result{Data: []Bar{}}
	}

	n := len(bars)
	data := make([]Bar, n)
	posMF := make([]float64, n)
	negMF := make([]float64, n)
	tr := make([]float64, n)

	obv := 0.0
	prevClose := math.NaN()
	prevTP := math.NaN()
	for i := 0; i < n; i++ {
		b := bars[i]
		data[i].MergedBar = b

		if !math.IsNaN(prevClose) {
			if b.Close > prevClose {
				obv += b.Volume
			} else if b.Close < prevClose {
				obv -= b.Volume
			}
		}
		data[i].OBV = obv

		tp := (b.High + b.Low + b.Close) / 3
		if !math.IsNaN(prevTP) {
			mf := tp * b.Volume
			if tp > prevTP {
				posMF[i] = mf
			} else if tp < prevTP {
				negMF[i] = mf
			}
		}
		data[i].TP = tp

		if !math.IsNaN(prevClose) {
			tr[i] = math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
		} else {
			tr[i] = b.High - b.Low
		}

		prevClose = b.Close
		prevTP = tp
	}

	for i := period14; i < n; i++ {
		sum := 0.0
		for k := i - period14 + 1; k <= i; k++ {
			sum += tr[k]
		}
		data[i].ATR14 = ptr(sum / period14)
	}

	for i := period14; i < n; i++ {
		pos, neg := 0.0, 0.0
		for k := i - period14 + 1; k <= i; k++ {
			pos += posMF[k]
			neg += negMF[k]
		}
		ratio := 100.0
		if neg != 0 {
			ratio = pos / neg
		}
		data[i].MFI14 = ptr(100 - 100/(1+ratio))
	}

	start := anchorIndex
	if start < 0 {
		start = 0
	}
	if start > n-1 {
		start = n - 1
	}
	cumPV, cumV := 0.0, 0.0
	for i := start; i < n; i++ {
		cumPV += data[i].TP * bars[i].Volume
		cumV += bars[i].Volume
		if cumV != 0 {
			data[i].AVWAP = ptr(cumPV / cumV)
		}
	}

	obvMax := 0.0
	for i := range data {
		if a := math.Abs(data[i].OBV); a > obvMax {
			obvMax = a
		}
	}

	enrichChart(data)
	return Result{Data: data, OBVMax: obvMax}
}

func ptr(v float64) *float64 { return &v }
