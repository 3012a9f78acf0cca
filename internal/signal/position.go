package signal

import (
	"fmt"
	"math"

	"github.com/DH-11027/paradise/internal/indicator"
)

// DefaultPortfolioValue is the assumed portfolio for position sizing, in KRW.
const DefaultPortfolioValue = 100_000_000

// PositionSize is the risk-adjusted sizing suggestion in KRW.
type PositionSize struct {
	Size      float64  `json:"size"`
	Leverage  float64  `json:"leverage"`
	Reasoning []string `json:"reasoning"`
}

// OptimalPositionSize sizes an entry with a quarter-Kelly fraction,
// scaled down for volatility and capped at 1% of average daily turnover.
// Needs 20 bars; without losses in the window the Kelly inputs are
// undefined and the size is zero.
func OptimalPositionSize(data []indicator.Bar, index int, portfolioValue float64) PositionSize {
	if portfolioValue <= 0 {
		portfolioValue = DefaultPortfolioValue
	}
	if index < 20 || index >= len(data) {
		return PositionSize{Leverage: 1, Reasoning: []string{"최소 20일 데이터 필요"}}
	}

	prev20 := data[index-20 : index]
	returns := make([]float64, 0, len(prev20)-1)
	for i := 1; i < len(prev20); i++ {
		returns = append(returns, (prev20[i].Close-prev20[i-1].Close)/prev20[i-1].Close)
	}

	wins, losses := 0.0, 0.0
	winCount, lossCount := 0, 0
	for _, r := range returns {
		if r > 0 {
			wins += r
			winCount++
		} else if r < 0 {
			losses += r
			lossCount++
		}
	}

	winRate := float64(winCount) / float64(len(returns))
	avgWin := wins / math.Max(1, float64(winCount))
	avgLoss := math.Abs(losses / math.Max(1, float64(lossCount)))
	if avgLoss == 0 {
		return PositionSize{Leverage: 1, Reasoning: []string{"Insufficient loss data"}}
	}

	kelly := (winRate*avgWin - (1-winRate)*avgLoss) / avgWin
	safeKelly := clamp(kelly*0.25, 0, 0.25)

	sumSq := 0.0
	for _, r := range returns {
		sumSq += r * r
	}
	vol := math.Sqrt(sumSq/float64(len(returns))) * math.Sqrt(252)
	volAdjustment := clamp(0.2/vol, 0.5, 1)

	avgTurnover := 0.0
	for _, d := range prev20 {
		avgTurnover += d.Volume * d.Close
	}
	avgTurnover /= float64(len(prev20))
	maxPosition := avgTurnover * 0.01

	size := math.Min(portfolioValue*safeKelly*volAdjustment, maxPosition)

	leverage := 1.0
	if safeKelly > 0.15 {
		leverage = 1.5
	}

	return PositionSize{
		Size:     math.Round(size),
		Leverage: leverage,
		Reasoning: []string{
			fmt.Sprintf("Kelly Fraction: %.2f%%", kelly*100),
			fmt.Sprintf("Volatility Adjustment: %.0f%%", volAdjustment*100),
			fmt.Sprintf("Win Rate: %.1f%%", winRate*100),
			fmt.Sprintf("Risk-Adjusted Size: %.2f%% of portfolio", safeKelly*100),
		},
	}
}
