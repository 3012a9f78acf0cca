package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMarketRegimeUnknownBelowTen(t *testing.T) {
	bars := flatBars(30, 10000)

	assert.Equal(t, RegimeUnknown, DetectMarketRegime(bars, 9))
	assert.Equal(t, RegimeUnknown, DetectMarketRegime(bars, 30), "out of range reads unknown")
	assert.NotEqual(t, RegimeUnknown, DetectMarketRegime(bars, 10))
}

func TestDetectMarketRegimeRangeBound(t *testing.T) {
	bars := flatBars(80, 10000)

	// flat price, zero volatility
	assert.Equal(t, RegimeRangeBound, DetectMarketRegime(bars, 70))
}

func TestDetectMarketRegimeBullTrending(t *testing.T) {
	// steady climb keeps volatility low while price runs ahead of MA60
	bars := trendBars(100, 10000, 60)

	assert.Equal(t, RegimeBull, DetectMarketRegime(bars, 90))
}

func TestDetectInstitutionalActivityPhases(t *testing.T) {
	bars := flatBars(40, 10000)
	assert.Equal(t, PhaseUnknown, detectInstitutionalActivity(bars, 19).Phase)

	// low volume and flat price reads as consolidation
	quiet := flatBars(40, 10000)
	quiet[30].Volume = 40000
	act := detectInstitutionalActivity(quiet, 30)
	assert.Equal(t, PhaseConsolidation, act.Phase)
	assert.Equal(t, 30.0, act.Strength)

	// volume spike, positive smart money, narrow range
	accum := flatBars(40, 10000)
	accum[30].Volume = 300000
	act = detectInstitutionalActivity(accum, 30)
	assert.Equal(t, PhaseAccumulation, act.Phase)
	assert.Equal(t, 75.0, act.Strength, "strength is volumeRatio*25 capped at 100")

	// selling into a falling tape
	dist := flatBars(40, 10000)
	dist[30].Volume = 200000
	dist[30].Close = 9800
	dist[30].High = 9900
	dist[30].Low = 9700
	dist[30].Flows.ForeignTotal = -500
	dist[30].Flows.InstitutionTotal = -200
	act = detectInstitutionalActivity(dist, 30)
	assert.Equal(t, PhaseDistribution, act.Phase)
}

func TestOrderFlowImbalanceBounds(t *testing.T) {
	bars := flatBars(20, 10000)
	assert.Zero(t, orderFlowImbalance(bars, 10), "close at typical price means no pressure")

	// closes pinned at the high for five days: pure buy pressure
	up := flatBars(20, 10000)
	for i := 6; i <= 10; i++ {
		up[i].High = 10200
		up[i].Low = 9800
		up[i].Close = 10200
	}
	got := orderFlowImbalance(up, 10)
	assert.InDelta(t, 1.0, got, 1e-9)

	down := flatBars(20, 10000)
	for i := 6; i <= 10; i++ {
		down[i].High = 10200
		down[i].Low = 9800
		down[i].Close = 9800
	}
	got = orderFlowImbalance(down, 10)
	assert.InDelta(t, -1.0, got, 1e-9)
}
