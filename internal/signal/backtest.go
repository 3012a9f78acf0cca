package signal

import (
	"math"

	"github.com/DH-11027/paradise/internal/indicator"
)

const (
	backtestCapital = 100_000_000
	buyFeeRate      = 1.003 // 0.3% commission and slippage on entry
	sellFeeRate     = 0.997
	positionWeight  = 0.3
	takeProfitRate  = 0.10
	stopLossRate    = -0.05
)

// Trade is one executed backtest fill.
type Trade struct {
	Date   string  `json:"date"`
	Type   string  `json:"type"`
	Price  float64 `json:"price"`
	Shares float64 `json:"shares"`
	Profit float64 `json:"profit,omitempty"`
	Reason string  `json:"reason"`
}

// BacktestResult aggregates walk-forward performance. Trades holds the
// last 10 fills only.
type BacktestResult struct {
	TotalReturn  float64 `json:"totalReturn"`
	TotalTrades  int     `json:"totalTrades"`
	WinRate      float64 `json:"winRate"`
	AvgWin       float64 `json:"avgWin"`
	AvgLoss      float64 `json:"avgLoss"`
	ProfitFactor float64 `json:"profitFactor"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	SharpeRatio  float64 `json:"sharpeRatio"`
	Trades       []Trade `json:"trades"`
	FinalCapital float64 `json:"finalCapital"`
}

// Backtest walks the series from the lookback warmup forward, entering on
// BUY signals at the next open with a 30% position and exiting at the next
// close on a 10% target, a 5% stop or a strong SELL, fees included. Any
// open position is liquidated at the final close. Returns nil when the
// series is shorter than max(20, lookback); with less history than the
// requested lookback the warmup shrinks, but never below 20 bars.
func Backtest(data []indicator.Bar, lookback int) *BacktestResult {
	if lookback <= 0 {
		lookback = 60
	}
	minBars := lookback
	if minBars < 20 {
		minBars = 20
	}
	if len(data) < minBars {
		return nil
	}

	adjusted := lookback
	if limit := len(data) - 20; limit < adjusted {
		adjusted = limit
	}
	if adjusted < 20 {
		adjusted = 20
	}

	trades := []Trade{}
	capital := float64(backtestCapital)
	position := 0.0
	entryPrice := 0.0

	for i := adjusted; i < len(data)-1; i++ {
		set := GenerateTradingSignals(data, i)
		if set == nil || set.BestSignal == nil {
			continue
		}
		best := set.BestSignal
		next := data[i+1]

		if best.Type == "BUY" && position == 0 && next.Open > 0 {
			shares := math.Floor(capital * positionWeight / next.Open)
			if shares > 0 {
				position = shares
				entryPrice = next.Open
				capital -= shares * next.Open * buyFeeRate
				trades = append(trades, Trade{
					Date:   next.Date,
					Type:   "BUY",
					Price:  next.Open,
					Shares: shares,
					Reason: best.Reason,
				})
			}
		}

		if position > 0 {
			price := next.Close
			profitRate := (price - entryPrice) / entryPrice

			exit := func(reason string) {
				capital += position * price * sellFeeRate
				trades = append(trades, Trade{
					Date:   next.Date,
					Type:   "SELL",
					Price:  price,
					Shares: position,
					Profit: profitRate * 100,
					Reason: reason,
				})
				position = 0
			}

			switch {
			case profitRate > takeProfitRate:
				exit("목표가 도달 (익절)")
			case profitRate < stopLossRate:
				exit("손절")
			case best.Type == "SELL" && best.Strength == "STRONG":
				exit(best.Reason)
			}
		}
	}

	if position > 0 {
		capital += position * data[len(data)-1].Close * sellFeeRate
	}

	totalReturn := (capital - backtestCapital) / backtestCapital * 100

	var wins, losses []Trade
	for _, t := range trades {
		if t.Type != "SELL" {
			continue
		}
		if t.Profit > 0 {
			wins = append(wins, t)
		} else {
			losses = append(losses, t)
		}
	}

	winRate := 0.0
	if n := len(wins) + len(losses); n > 0 {
		winRate = float64(len(wins)) / float64(n) * 100
	}

	avgWin := 0.0
	for _, t := range wins {
		avgWin += t.Profit
	}
	if len(wins) > 0 {
		avgWin /= float64(len(wins))
	}
	avgLoss := 0.0
	for _, t := range losses {
		avgLoss += t.Profit
	}
	if len(losses) > 0 {
		avgLoss = math.Abs(avgLoss / float64(len(losses)))
	}

	profitFactor := 0.0
	if avgLoss > 0 {
		profitFactor = avgWin / avgLoss
	}

	// Drawdown on the trade-compounded equity curve.
	maxCapital := float64(backtestCapital)
	running := float64(backtestCapital)
	maxDrawdown := 0.0
	for _, t := range trades {
		if t.Type != "SELL" {
			continue
		}
		running *= 1 + t.Profit/100
		maxCapital = math.Max(maxCapital, running)
		maxDrawdown = math.Max(maxDrawdown, (maxCapital-running)/maxCapital)
	}

	recent := trades
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	return &BacktestResult{
		TotalReturn:  totalReturn,
		TotalTrades:  len(trades),
		WinRate:      winRate,
		AvgWin:       avgWin,
		AvgLoss:      avgLoss,
		ProfitFactor: profitFactor,
		MaxDrawdown:  maxDrawdown * 100,
		SharpeRatio:  sharpeRatio(trades),
		Trades:       recent,
		FinalCapital: capital,
	}
}

// sharpeRatio annualizes the per-trade sell returns.
func sharpeRatio(trades []Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	returns := []float64{}
	for _, t := range trades {
		if t.Type == "SELL" {
			returns = append(returns, t.Profit/100)
		}
	}
	if len(returns) == 0 {
		return 0
	}

	avg := 0.0
	for _, r := range returns {
		avg += r
	}
	avg /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - avg) * (r - avg)
	}
	std := math.Sqrt(variance / float64(len(returns)))
	if std == 0 {
		return 0
	}
	return avg / std * math.Sqrt(252)
}
