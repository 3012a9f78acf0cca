package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestADX(t *testing.T) {
	assert.Zero(t, adx(trendBars(60, 10000, 50), 27, 14), "needs two full periods")

	// a one-way trend has pure +DM: dx pins at 100
	got := adx(trendBars(60, 10000, 50), 50, 14)
	assert.InDelta(t, 100.0, got, 1e-9)

	// a dead-flat tape has no directional movement at all
	assert.Zero(t, adx(flatBars(60, 10000), 50, 14))
}

func TestStochastic(t *testing.T) {
	assert.Equal(t, 50.0, stochastic(flatBars(30, 10000), 10, 14), "insufficient history is neutral")
	assert.Equal(t, 50.0, stochastic(flatBars(30, 10000), 20, 14), "flat range is neutral")

	bars := trendBars(40, 10000, 50)
	got := stochastic(bars, 30, 14)
	assert.Greater(t, got, 50.0, "close near the top of a rising range")
	assert.LessOrEqual(t, got, 100.0)
}

func TestOscillatorComposite(t *testing.T) {
	assert.Zero(t, oscillatorComposite(50, 50, 50))

	oversold := oscillatorComposite(25, 15, 10)
	assert.Equal(t, 100.0, oversold, "(30+25+20)*1.5 clamps at 100")

	overbought := oscillatorComposite(75, 85, 90)
	assert.Equal(t, -100.0, overbought)

	mild := oscillatorComposite(35, 50, 50)
	assert.Equal(t, 15.0, mild, "single oscillator, no agreement boost")
}

func TestVolatilityAdjustedReturn(t *testing.T) {
	assert.Zero(t, volatilityAdjustedReturn(trendBars(40, 10000, 50), 10, 20))
	assert.Zero(t, volatilityAdjustedReturn(flatBars(40, 10000), 30, 20), "zero volatility yields zero")

	// steady gains with tiny dispersion give a strongly positive ratio
	got := volatilityAdjustedReturn(trendBars(60, 10000, 50), 50, 20)
	assert.Positive(t, got)
}

func TestMarketMicrostructure(t *testing.T) {
	assert.Zero(t, marketMicrostructure(flatBars(40, 10000), 10))

	got := marketMicrostructure(flatBars(40, 10000), 30)
	assert.GreaterOrEqual(t, got, -1.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestPriceEfficiency(t *testing.T) {
	assert.Equal(t, 1.0, priceEfficiency(trendBars(20, 10000, 50)), "straight line is fully efficient")
	assert.Zero(t, priceEfficiency(flatBars(20, 10000)), "no movement at all")
}

func TestRiskAdjustment(t *testing.T) {
	assert.Equal(t, 1.0, riskAdjustment(flatBars(80, 10000), 30), "defaults below 60 bars")
	assert.Equal(t, 1.1, riskAdjustment(flatBars(80, 10000), 70), "calm tape raises conviction")
}

func TestAdvancedTechnicalSignalWarmup(t *testing.T) {
	assert.Zero(t, advancedTechnicalSignal(flatBars(80, 10000), 59))

	got := advancedTechnicalSignal(flatBars(80, 10000), 70)
	assert.GreaterOrEqual(t, got, -100.0)
	assert.LessOrEqual(t, got, 100.0)
}
