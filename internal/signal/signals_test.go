package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTradingSignalsNilBelowTen(t *testing.T) {
	bars := flatBars(30, 10000)

	assert.Nil(t, GenerateTradingSignals(bars, 9))
	assert.Nil(t, GenerateTradingSignals(bars, 30))
	assert.NotNil(t, GenerateTradingSignals(bars, 10))
}

func TestGenerateTradingSignalsAccumulationBuy(t *testing.T) {
	bars := flatBars(40, 10000)

	got := GenerateTradingSignals(bars, 25)

	require.NotNil(t, got)
	require.NotNil(t, got.BestSignal)
	assert.Equal(t, "BUY", got.BestSignal.Type)
	assert.Equal(t, "STRONG", got.BestSignal.Strength)
	assert.Equal(t, "세력 매집 완료 + 스마트머니 유입", got.BestSignal.Reason)
	assert.Equal(t, 10000*0.95, got.BestSignal.StopLoss)
	assert.Equal(t, "LOW", got.RiskLevel)
	assert.Contains(t, got.Summary, "매수")
}

func TestGenerateTradingSignalsWeakSellFallback(t *testing.T) {
	bars := quietBars(40, 10000)

	got := GenerateTradingSignals(bars, 25)

	require.NotNil(t, got)
	require.Len(t, got.Signals, 1)
	// zero flows give a sub-50 smart-money score, so the weak SELL lean fires
	assert.Equal(t, "SELL", got.Signals[0].Type)
	assert.Equal(t, "WEAK", got.Signals[0].Strength)
	assert.Equal(t, 60.0, got.Signals[0].Confidence, "confidence mirrors 100 - score")
}

func TestGenerateTradingSignalsBestByConfidence(t *testing.T) {
	bars := flatBars(40, 10000)

	got := GenerateTradingSignals(bars, 25)

	require.NotNil(t, got)
	for _, s := range got.Signals {
		assert.LessOrEqual(t, s.Confidence, got.BestSignal.Confidence)
	}
}
