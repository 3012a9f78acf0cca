package signal

import (
	"math"
	"strconv"

	"github.com/DH-11027/paradise/internal/indicator"
)

// Factor is one weighted contribution to the composite trading signal.
// The regime factor is descriptive only and carries zero weight.
type Factor struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
	Phase       string  `json:"phase,omitempty"`
}

// Recommendation maps a signal level to an actionable plan.
type Recommendation struct {
	Action           string `json:"action"`
	Description      string `json:"description"`
	TargetAllocation string `json:"targetAllocation,omitempty"`
	StopLoss         string `json:"stopLoss,omitempty"`
	Confidence       string `json:"confidence,omitempty"`
}

// TradingSignal is the composite institutional signal at one bar.
type TradingSignal struct {
	Signal         float64        `json:"signal"`
	Factors        []Factor       `json:"factors"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	PositionSize   PositionSize   `json:"positionSize"`
	MarketRegime   Regime         `json:"marketRegime"`
	RiskMultiplier float64        `json:"riskMultiplier"`
}

// InstitutionalTradingSignal blends trend, advanced technicals,
// volatility-adjusted return, microstructure, the smart-money score and
// order-flow imbalance into one [-100, 100] signal with a regime-driven
// risk multiplier. Under 10 bars it returns the neutral WAIT reading.
func InstitutionalTradingSignal(data []indicator.Bar, index int) TradingSignal {
	if index < 10 || index >= len(data) {
		return TradingSignal{
			Factors:        []Factor{},
			Recommendation: Recommendation{Action: "WAIT", Description: "데이터 수집 중"},
			RiskMultiplier: 1,
		}
	}

	cur := data[index]
	factors := []Factor{}
	total := 0.0

	regime := DetectMarketRegime(data, index)
	factors = append(factors, Factor{
		Name:        "시장 레짐",
		Weight:      0,
		Description: string(regime),
	})

	// Trend with ADX strength and moving-average alignment
	dx := adx(data, index, 14)
	trendDirection := -1.0
	if cur.MA20 != nil && cur.Close > *cur.MA20 {
		trendDirection = 1
	}
	trendScore := 0.0
	switch {
	case dx > 40:
		trendScore = trendDirection * 30
	case dx > 25:
		trendScore = trendDirection * 20
	case dx < 20:
		trendScore = 0
	}
	if cur.MA5 != nil && cur.MA20 != nil && cur.MA60 != nil {
		switch {
		case *cur.MA5 > *cur.MA20 && *cur.MA20 > *cur.MA60:
			trendScore = math.Max(trendScore, 25)
		case *cur.MA5 < *cur.MA20 && *cur.MA20 < *cur.MA60:
			trendScore = math.Min(trendScore, -25)
		}
	}
	factors = append(factors, Factor{Name: "멀티타임프레임 추세", Value: trendScore, Weight: 0.20})
	total += trendScore * 0.20

	technical := advancedTechnicalSignal(data, index)
	factors = append(factors, Factor{Name: "고급 기술적 신호", Value: technical, Weight: 0.25})
	total += technical * 0.25

	volAdj := volatilityAdjustedReturn(data, index, 20)
	factors = append(factors, Factor{Name: "변동성 조정 수익률", Value: volAdj * 100, Weight: 0.15})
	total += volAdj * 15

	micro := marketMicrostructure(data, index)
	factors = append(factors, Factor{Name: "시장 미시구조", Value: micro * 100, Weight: 0.20})
	total += micro * 20

	smartMoney := SmartMoneyScore(data, index)
	activity := detectInstitutionalActivity(data, index)
	smSignal := (smartMoney.Score - 50) / 50
	if activity.Phase == PhaseAccumulation {
		smSignal = math.Min(1, smSignal*1.5)
	} else if activity.Phase == PhaseDistribution {
		smSignal = math.Max(-1, smSignal*1.5)
	}
	factors = append(factors, Factor{Name: "기관 스마트머니", Value: smSignal * 100, Weight: 0.30, Phase: activity.Phase})
	total += smSignal * 30

	imbalance := orderFlowImbalance(data, index)
	factors = append(factors, Factor{Name: "주문 흐름 불균형", Value: imbalance * 100, Weight: 0.15})
	total += imbalance * 15

	riskMultiplier := 1.0
	switch regime {
	case RegimeHighVol:
		riskMultiplier = 0.6
	case RegimeBear:
		riskMultiplier = 0.7
	case RegimeBull:
		riskMultiplier = 1.2
	case RegimeBreakout:
		riskMultiplier = 1.1
	default:
		riskMultiplier = riskAdjustment(data, index)
	}
	total *= riskMultiplier

	return TradingSignal{
		Signal:         clamp(total, -100, 100),
		Factors:        factors,
		Recommendation: tradingRecommendation(total),
		Confidence:     signalConfidence(factors),
		PositionSize:   OptimalPositionSize(data, index, DefaultPortfolioValue),
		MarketRegime:   regime,
		RiskMultiplier: riskMultiplier,
	}
}

// signalConfidence rates factor unanimity and average strength, 0-100.
// Zero-weight descriptive factors count toward neither direction.
func signalConfidence(factors []Factor) float64 {
	if len(factors) == 0 {
		return 0
	}

	positive, negative := 0, 0
	strength := 0.0
	for _, f := range factors {
		if f.Value > 0 {
			positive++
		} else if f.Value < 0 {
			negative++
		}
		strength += math.Abs(f.Value)
	}

	unanimity := float64(max(positive, negative)) / float64(len(factors))
	avgStrength := strength / float64(len(factors))
	return math.Round((unanimity*0.6 + avgStrength/100*0.4) * 100)
}

func tradingRecommendation(signal float64) Recommendation {
	urgency := "단계적"
	if math.Abs(signal) > 70 {
		urgency = "즉시"
	}
	confidence := strconv.FormatFloat(math.Min(100, math.Abs(signal)*1.2), 'f', -1, 64) + "%"

	switch {
	case signal >= 70:
		return Recommendation{
			Action:           "STRONG BUY",
			Description:      urgency + " 매수 포지션 구축",
			TargetAllocation: "15-20%",
			StopLoss:         "진입가 -3%",
			Confidence:       confidence,
		}
	case signal >= 40:
		return Recommendation{
			Action:           "BUY",
			Description:      "분할 매수 진행",
			TargetAllocation: "10-15%",
			StopLoss:         "진입가 -5%",
			Confidence:       confidence,
		}
	case signal >= 15:
		return Recommendation{
			Action:           "ACCUMULATE",
			Description:      "저가 분할매수 검토",
			TargetAllocation: "5-10%",
			StopLoss:         "진입가 -7%",
			Confidence:       confidence,
		}
	case signal >= -15:
		return Recommendation{
			Action:           "HOLD",
			Description:      "현 포지션 유지",
			TargetAllocation: "현재 유지",
			StopLoss:         "동적 조정",
			Confidence:       confidence,
		}
	case signal >= -40:
		return Recommendation{
			Action:           "REDUCE",
			Description:      "단계적 비중 축소",
			TargetAllocation: "50% 감소",
			StopLoss:         "즉시 실행",
			Confidence:       confidence,
		}
	case signal >= -70:
		return Recommendation{
			Action:           "SELL",
			Description:      "포지션 청산 진행",
			TargetAllocation: "20% 이하",
			StopLoss:         "N/A",
			Confidence:       confidence,
		}
	}
	return Recommendation{
		Action:           "EXIT",
		Description:      urgency + " 전량 청산",
		TargetAllocation: "0%",
		StopLoss:         "N/A",
		Confidence:       confidence,
	}
}
