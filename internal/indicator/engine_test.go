package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DH-11027/paradise/internal/series"
)

// walkBars builds n bars on a deterministic zig-zag walk so direction
// changes exercise both money-flow buckets.
func walkBars(n int) []series.MergedBar {
	bars := make([]series.MergedBar, n)
	price := 10000.0
	for i := 0; i < n; i++ {
		step := float64((i%7)-3) * 50
		price += step
		bars[i] = series.MergedBar{PriceBar: series.PriceBar{
			Date:   "2024-01-01",
			Open:   price - 20,
			High:   price + 100,
			Low:    price - 100,
			Close:  price,
			Volume: float64(100000 + (i%5)*10000),
		}}
	}
	return bars
}

func TestComputeEmptyInput(t *testing.T) {
	res := Compute(nil, 0)
	assert.Empty(t, res.Data)
	assert.Zero(t, res.OBVMax)
}

func TestComputeOBV(t *testing.T) {
	bars := []series.MergedBar{
		{PriceBar: series.PriceBar{Close: 100, Volume: 10}},
		{PriceBar: series.PriceBar{Close: 101, Volume: 20}},
		{PriceBar: series.PriceBar{Close: 101, Volume: 30}},
		{PriceBar: series.PriceBar{Close: 99, Volume: 40}},
	}

	res := Compute(bars, 0)

	assert.Equal(t, 0.0, res.Data[0].OBV, "first bar has no prior close")
	assert.Equal(t, 20.0, res.Data[1].OBV, "up day adds volume")
	assert.Equal(t, 20.0, res.Data[2].OBV, "flat day leaves OBV unchanged")
	assert.Equal(t, -20.0, res.Data[3].OBV, "down day subtracts volume")
	assert.Equal(t, 20.0, res.OBVMax, "scale hint is the max absolute OBV")
}

func TestComputeWarmupWindows(t *testing.T) {
	res := Compute(walkBars(20), 0)

	for i := 0; i < 14; i++ {
		assert.Nil(t, res.Data[i].ATR14, "atr14 before index 14 at %d", i)
		assert.Nil(t, res.Data[i].MFI14, "mfi14 before index 14 at %d", i)
	}
	require.NotNil(t, res.Data[14].ATR14)
	require.NotNil(t, res.Data[14].MFI14)
	assert.Positive(t, *res.Data[14].ATR14)
}

func TestComputeMFIBound(t *testing.T) {
	res := Compute(walkBars(80), 0)

	for i := 14; i < len(res.Data); i++ {
		mfi := res.Data[i].MFI14
		require.NotNil(t, mfi, "mfi14 must be set from index 14, bar %d", i)
		assert.GreaterOrEqual(t, *mfi, 0.0)
		assert.LessOrEqual(t, *mfi, 100.0)
	}
}

func TestComputeAnchoredVWAP(t *testing.T) {
	bars := walkBars(30)
	anchor := 10

	res := Compute(bars, anchor)

	for i := 0; i < anchor; i++ {
		assert.Nil(t, res.Data[i].AVWAP, "avwap before the anchor at %d", i)
	}
	require.NotNil(t, res.Data[anchor].AVWAP)
	assert.InDelta(t, res.Data[anchor].TP, *res.Data[anchor].AVWAP, 1e-9,
		"at the anchor the VWAP equals that bar's typical price")

	// cumulative check on the next bar
	d0, d1 := res.Data[anchor], res.Data[anchor+1]
	v0, v1 := bars[anchor].Volume, bars[anchor+1].Volume
	want := (d0.TP*v0 + d1.TP*v1) / (v0 + v1)
	assert.InDelta(t, want, *d1.AVWAP, 1e-9)
}

func TestComputeAnchorClamped(t *testing.T) {
	bars := walkBars(5)

	for _, anchor := range []int{-3, 99} {
		res := Compute(bars, anchor)
		require.Len(t, res.Data, 5)
		assert.NotNil(t, res.Data[4].AVWAP, "clamped anchor still yields a VWAP on the last bar")
	}
}

func TestComputeZeroVolumePrefix(t *testing.T) {
	bars := walkBars(5)
	for i := range bars {
		bars[i].Volume = 0
	}

	res := Compute(bars, 0)

	for i := range res.Data {
		assert.Nil(t, res.Data[i].AVWAP, "zero cumulative volume leaves avwap null at %d", i)
	}
}

func TestComputeDeterministic(t *testing.T) {
	bars := walkBars(40)

	a := Compute(bars, 7)
	b := Compute(bars, 7)

	assert.Equal(t, a, b, "recomputation with the same anchor is pure")
}

func TestComputeTrueRangeUsesGaps(t *testing.T) {
	bars := []series.MergedBar{
		{PriceBar: series.PriceBar{High: 110, Low: 100, Close: 105, Volume: 1}},
		{PriceBar: series.PriceBar{High: 130, Low: 126, Close: 128, Volume: 1}},
	}
	for i := 0; i < 14; i++ {
		bars = append(bars, series.MergedBar{PriceBar: series.PriceBar{High: 129, Low: 127, Close: 128, Volume: 1}})
	}

	res := Compute(bars, 0)

	// tr[1] is the gap |high-prevClose| = 25, not high-low = 4; the flat
	// bars contribute high-low = 2 and the window at index 14 drops bar 0.
	require.NotNil(t, res.Data[14].ATR14)
	assert.InDelta(t, (25.0+13*2)/14, *res.Data[14].ATR14, 1e-9)
}

func TestComputeMoneyFlowRatioAllPositive(t *testing.T) {
	bars := make([]series.MergedBar, 16)
	price := 100.0
	for i := range bars {
		price += 10
		bars[i] = series.MergedBar{PriceBar: series.PriceBar{High: price + 1, Low: price - 1, Close: price, Volume: 100}}
	}

	res := Compute(bars, 0)

	require.NotNil(t, res.Data[14].MFI14)
	assert.InDelta(t, 100-100/101.0, *res.Data[14].MFI14, 1e-9,
		"no negative flow pins the ratio at 100")
	assert.False(t, math.IsNaN(*res.Data[15].MFI14))
}
