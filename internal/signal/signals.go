package signal

import (
	"fmt"
	"sort"

	"github.com/DH-11027/paradise/internal/indicator"
)

// TradeSignal is one concrete entry or exit suggestion.
type TradeSignal struct {
	Type       string  `json:"type"`
	Strength   string  `json:"strength"`
	Entry      float64 `json:"entry,omitempty"`
	Exit       float64 `json:"exit,omitempty"`
	StopLoss   float64 `json:"stopLoss,omitempty"`
	Target1    float64 `json:"target1,omitempty"`
	Target2    float64 `json:"target2,omitempty"`
	Target3    float64 `json:"target3,omitempty"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
	RiskReward float64 `json:"riskReward,omitempty"`
	Action     string  `json:"action,omitempty"`
	Warning    string  `json:"warning,omitempty"`
}

// SignalSet bundles the signals at one bar with risk context.
type SignalSet struct {
	Signals           []TradeSignal `json:"signals"`
	BestSignal        *TradeSignal  `json:"bestSignal"`
	RiskLevel         string        `json:"riskLevel"`
	SuggestedPosition PositionSize  `json:"suggestedPosition"`
	Summary           string        `json:"summary"`
}

// GenerateTradingSignals evaluates the pattern detectors and composite
// signals at index and emits concrete entries/exits with stops and
// targets. The best signal is the one with the highest confidence.
// Returns nil under 10 bars of history.
func GenerateTradingSignals(data []indicator.Bar, index int) *SignalSet {
	if index < 10 || index >= len(data) {
		return nil
	}

	cur := data[index]
	signals := []TradeSignal{}

	accumulation := DetectAccumulationPattern(data, index)
	breakout := DetectBreakoutPattern(data, index)
	reversal := DetectReversalPattern(data, index)
	distribution := DetectDistributionPattern(data, index)

	trading := InstitutionalTradingSignal(data, index)
	smartMoney := SmartMoneyScore(data, index)

	if accumulation.Detected && smartMoney.Score > 55 {
		signals = append(signals, TradeSignal{
			Type:       "BUY",
			Strength:   "STRONG",
			Entry:      cur.Close,
			StopLoss:   cur.Close * 0.95,
			Target1:    cur.Close * 1.05,
			Target2:    cur.Close * 1.10,
			Target3:    cur.Close * 1.20,
			Reason:     "세력 매집 완료 + 스마트머니 유입",
			Confidence: (accumulation.Confidence + smartMoney.Score) / 2,
			RiskReward: 2.0,
		})
	}

	if breakout.Detected && trading.Signal > 50 {
		signals = append(signals, TradeSignal{
			Type:       "BUY",
			Strength:   "STRONG",
			Entry:      cur.Close,
			StopLoss:   cur.Close * 0.97,
			Target1:    cur.Close * 1.08,
			Target2:    cur.Close * 1.15,
			Target3:    cur.Close * 1.30,
			Reason:     "돌파 매수 신호",
			Confidence: breakout.Confidence,
			RiskReward: 3.5,
		})
	}

	if reversal.Detected && reversal.Warning == "" {
		signals = append(signals, TradeSignal{
			Type:       "BUY",
			Strength:   "MODERATE",
			Entry:      cur.Close,
			StopLoss:   cur.Close * 0.93,
			Target1:    cur.Close * 1.07,
			Target2:    cur.Close * 1.12,
			Reason:     "급락 후 반등",
			Confidence: reversal.Confidence,
			RiskReward: 1.7,
			Warning:    "분할 매수 권장",
		})
	}

	if distribution.Detected {
		signals = append(signals, TradeSignal{
			Type:       "SELL",
			Strength:   "STRONG",
			Exit:       cur.Close,
			Reason:     "기관 분산 매도",
			Confidence: distribution.Confidence,
			Action:     "전량 매도 또는 50% 이상 비중 축소",
		})
	}

	if trading.Signal < -50 && smartMoney.Score < 40 {
		signals = append(signals, TradeSignal{
			Type:       "SELL",
			Strength:   "STRONG",
			Exit:       cur.Close,
			Reason:     "종합 매도 신호 + 스마트머니 이탈",
			Confidence: 85,
			Action:     "즉시 청산",
		})
	}

	// No pattern fired: fall back to a weak smart-money lean.
	if len(signals) == 0 {
		if smartMoney.Score > 50 {
			signals = append(signals, TradeSignal{
				Type:       "BUY",
				Strength:   "WEAK",
				Entry:      cur.Close,
				StopLoss:   cur.Close * 0.97,
				Target1:    cur.Close * 1.03,
				Target2:    cur.Close * 1.05,
				Reason:     "스마트머니 점수 양호",
				Confidence: smartMoney.Score,
				RiskReward: 1.0,
			})
		} else if smartMoney.Score < 50 {
			signals = append(signals, TradeSignal{
				Type:       "SELL",
				Strength:   "WEAK",
				Exit:       cur.Close,
				Reason:     "스마트머니 점수 부진",
				Confidence: 100 - smartMoney.Score,
				Action:     "부분 익절 고려",
			})
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Confidence > signals[j].Confidence
	})

	var best *TradeSignal
	if len(signals) > 0 {
		best = &signals[0]
	}

	vol := volatility(data[index-19 : index+1])
	riskLevel := "LOW"
	if vol > 0.03 {
		riskLevel = "HIGH"
	} else if vol > 0.02 {
		riskLevel = "MEDIUM"
	}

	summary := "관망"
	if len(signals) > 0 {
		buys, sells := 0, 0
		for _, s := range signals {
			if s.Type == "BUY" {
				buys++
			} else {
				sells++
			}
		}
		summary = fmt.Sprintf("%d개 매수, %d개 매도 신호", buys, sells)
	}

	return &SignalSet{
		Signals:           signals,
		BestSignal:        best,
		RiskLevel:         riskLevel,
		SuggestedPosition: OptimalPositionSize(data, index, DefaultPortfolioValue),
		Summary:           summary,
	}
}
