package signal

import (
	"math"

	"github.com/DH-11027/paradise/internal/indicator"
)

// Breakdown itemizes the smart-money score contributions. Pointer fields
// are omitted from JSON when the component could not be evaluated.
type Breakdown struct {
	MarketRegime         Regime   `json:"marketRegime,omitempty"`
	FlowIntensity        *float64 `json:"flowIntensity,omitempty"`
	Persistence          *float64 `json:"persistence,omitempty"`
	RetailDivergence     *float64 `json:"retailDivergence,omitempty"`
	Momentum             *float64 `json:"momentum,omitempty"`
	VolumeSignal         *float64 `json:"volumeSignal,omitempty"`
	InstitutionalPattern *float64 `json:"institutionalPattern,omitempty"`
}

// SmartMoney is the 0-100 institutional smart-money reading.
type SmartMoney struct {
	Score          float64   `json:"score"`
	Breakdown      Breakdown `json:"breakdown"`
	Interpretation string    `json:"interpretation"`
}

// SmartMoneyScore rates institutional positioning at index on a 0-100
// scale, 50 neutral. Components: flow intensity with order-flow imbalance
// (±30), multi-timeframe persistence (±25), retail divergence (±15),
// cumulative flow momentum (±15), high-volume confirmation (±10) and the
// institutional activity pattern (±20), scaled by the market regime.
// Under 10 bars the neutral insufficient-data reading is returned.
func SmartMoneyScore(data []indicator.Bar, index int) SmartMoney {
	if index < 10 || index >= len(data) {
		return SmartMoney{Score: 50, Interpretation: "데이터 부족"}
	}

	cur := data[index]
	lookback20 := 20
	if index < 20 {
		lookback20 = index
	}
	lookback60 := 60
	if index < 60 {
		lookback60 = index
	}
	prev20 := data[index-lookback20 : index]
	prev60 := data[index-lookback60 : index]

	var breakdown Breakdown
	total := 0.0

	regime := DetectMarketRegime(data, index)
	multiplier := 1.0
	switch regime {
	case RegimeBull:
		multiplier = 1.2
	case RegimeBear:
		multiplier = 0.8
	case RegimeHighVol:
		multiplier = 0.7
	case RegimeBreakout:
		multiplier = 1.3
	}
	breakdown.MarketRegime = regime

	foreignFlow := cur.Flows.ForeignTotal
	instFlow := cur.Flows.InstitutionTotal
	retailFlow := cur.Flows.Retail
	totalAbsFlow := math.Abs(foreignFlow) + math.Abs(instFlow) + math.Abs(retailFlow)

	if totalAbsFlow > 0 {
		intensity := (foreignFlow + instFlow) / totalAbsFlow * 20
		enhanced := intensity + orderFlowImbalance(data, index)*10
		v := clamp(enhanced, -30, 30)
		breakdown.FlowIntensity = &v
		total += v
	}

	// Short-term persistence: streak of same-direction smart-money days.
	consecutive := 0
	lastDirection := 0
	for _, d := range data[index-4 : index+1] {
		direction := 0
		if f := smartFlow(d); f > 0 {
			direction = 1
		} else if f < 0 {
			direction = -1
		}
		if direction == lastDirection && direction != 0 {
			consecutive++
		} else if direction != 0 {
			consecutive = 1
		} else {
			consecutive = 0
		}
		lastDirection = direction
	}
	shortTerm := math.Min(15, float64(consecutive*3*lastDirection))

	recent10 := data[index-9 : index+1]
	positive := 0
	for _, d := range recent10 {
		if smartFlow(d) > 0 {
			positive++
		}
	}
	longTerm := (float64(positive)/float64(len(recent10)) - 0.5) * 20

	persistence := shortTerm + longTerm
	breakdown.Persistence = &persistence
	total += persistence

	// Retail fading the smart money is the bullish confirmation.
	smartTotal := foreignFlow + instFlow
	divergence := 0.0
	if smartTotal > 0 && retailFlow < 0 {
		divergence = 15
	} else if smartTotal < 0 && retailFlow > 0 {
		divergence = -15
	}
	breakdown.RetailDivergence = &divergence
	total += divergence

	if len(prev60) > 0 {
		avg20 := sumSmartFlow(prev20) / float64(len(prev20))
		avg60 := sumSmartFlow(prev60) / float64(len(prev60))
		momentum := 0.0
		if avg20 > avg60 {
			momentum = 15
		} else if avg20 < avg60*0.5 {
			momentum = -15
		}
		breakdown.Momentum = &momentum
		total += momentum
	}

	avgVolume := meanVolume(prev20)
	if cur.Volume > avgVolume*2.5 {
		if smartTotal > 0 {
			v := 10.0
			breakdown.VolumeSignal = &v
			total += v
		} else if smartTotal < 0 {
			v := -10.0
			breakdown.VolumeSignal = &v
			total += v
		}
	} else {
		v := 0.0
		breakdown.VolumeSignal = &v
	}

	activity := detectInstitutionalActivity(data, index)
	instScore := 0.0
	switch {
	case activity.Phase == PhaseAccumulation:
		instScore = activity.Strength * 0.2
	case activity.Phase == PhaseDistribution:
		instScore = -activity.Strength * 0.2
	case activity.Phase == PhaseMarkup && foreignFlow > 0:
		instScore = 15
	case activity.Phase == PhaseMarkdown && foreignFlow < 0:
		instScore = -15
	}

	// Foreign leadership premium
	switch {
	case foreignFlow > 0 && instFlow <= 0:
		instScore += 5
	case foreignFlow > 0 && instFlow > 0 && foreignFlow > instFlow*1.5:
		instScore += 10
	case foreignFlow < 0 && instFlow >= 0:
		instScore -= 5
	case foreignFlow < 0 && instFlow < 0 && foreignFlow < instFlow*1.5:
		instScore -= 10
	}

	pattern := clamp(instScore, -20, 20)
	breakdown.InstitutionalPattern = &pattern
	total += pattern

	total *= multiplier
	score := clamp(total+50, 0, 100)

	return SmartMoney{
		Score:          score,
		Breakdown:      breakdown,
		Interpretation: interpretSmartMoney(score),
	}
}

func sumSmartFlow(bars []indicator.Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += smartFlow(b)
	}
	return sum
}

func interpretSmartMoney(score float64) string {
	switch {
	case score >= 80:
		return "💰 기관/외인 대량 매집 중 → 강력 매수 시그널"
	case score >= 65:
		return "📈 스마트머니 순매수 → 매수 고려"
	case score >= 50:
		return "⚖️ 수급 균형 → 관망 추천"
	case score >= 35:
		return "📉 스마트머니 이탈 시작 → 주의 필요"
	default:
		return "🚨 기관/외인 대량 매도 → 매도 고려"
	}
}
