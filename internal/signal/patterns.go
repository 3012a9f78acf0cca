package signal

import (
	"math"

	"github.com/DH-11027/paradise/internal/indicator"
)

// Pattern is a recognized supply/demand pattern at one bar.
type Pattern struct {
	Detected    bool    `json:"detected"`
	Confidence  float64 `json:"confidence"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Warning     string  `json:"warning,omitempty"`
}

// DetectAccumulationPattern scores quiet institutional accumulation:
// price stability with persistent institutional buying, drying volume,
// retail-to-institution handover and repeated support tests. Detected at
// 60 of 100 points.
func DetectAccumulationPattern(data []indicator.Bar, index int) Pattern {
	if index < 10 || index >= len(data) {
		return Pattern{}
	}

	recent := window(data, index, 20)
	points := 0.0

	high, low := math.Inf(-1), math.Inf(1)
	for _, d := range recent {
		high = math.Max(high, d.High)
		low = math.Min(low, d.Low)
	}
	avgPrice := meanClose(recent)
	priceStable := (high-low)/avgPrice < 0.1

	instBuying := 0
	for _, d := range recent {
		if d.Flows.InstitutionTotal > 0 {
			instBuying++
		}
	}
	if priceStable && instBuying > 12 {
		points += 30
	}

	lastVol, firstVol := 0.0, 0.0
	for _, d := range recent[len(recent)-5:] {
		lastVol += d.Volume
	}
	for _, d := range recent[:5] {
		firstVol += d.Volume
	}
	if firstVol > 0 && lastVol/firstVol < 0.7 && instBuying > 10 {
		points += 25
	}

	smartMoneyBuy := 0
	for _, d := range recent {
		if smartFlow(d) > 0 && d.Flows.Retail < 0 {
			smartMoneyBuy++
		}
	}
	if smartMoneyBuy > 12 {
		points += 25
	}

	supportTests := 0
	for _, d := range recent {
		if math.Abs(d.Low-low)/low < 0.01 {
			supportTests++
		}
	}
	if supportTests > 3 {
		points += 20
	}

	p := Pattern{
		Detected:   points >= 60,
		Confidence: math.Min(100, points),
		Type:       "매집",
	}
	if p.Detected {
		p.Description = "세력 매집 진행 중"
	}
	return p
}

// DetectBreakoutPattern scores a close above the 60-bar high on expanded
// volume with outsized smart-money buying. Detected at 70 of 100 points.
func DetectBreakoutPattern(data []indicator.Bar, index int) Pattern {
	if index < 10 || index >= len(data) {
		return Pattern{}
	}

	cur := data[index]
	recent20 := window(data, index, 20)
	recent60 := window(data, index, 60)
	points := 0.0

	high60 := math.Inf(-1)
	for _, d := range recent60[:len(recent60)-1] {
		high60 = math.Max(high60, d.High)
	}
	if cur.Close > high60 {
		points += 40
	}

	prior := recent20[:len(recent20)-1]
	avgVol := meanVolume(prior)
	if cur.Volume > avgVol*2 {
		points += 30
	}

	avgSmart := 0.0
	for _, d := range prior {
		avgSmart += smartFlow(d)
	}
	avgSmart /= float64(len(prior))
	if smartFlow(cur) > avgSmart*3 {
		points += 30
	}

	p := Pattern{
		Detected:   points >= 70,
		Confidence: math.Min(100, points),
		Type:       "돌파",
	}
	if p.Detected {
		p.Description = "상승 돌파 신호"
	}
	return p
}

// DetectReversalPattern looks for a bounce after a 10%+ drop: a 3% up day,
// institutions turning buyers and rising volume. Below 80 points the bounce
// is flagged as a possible dead cat.
func DetectReversalPattern(data []indicator.Bar, index int) Pattern {
	if index < 10 || index >= len(data) {
		return Pattern{}
	}

	recent10 := data[index-9 : index+1]
	cur := data[index]
	prev := data[index-1]

	highPoint := math.Inf(-1)
	for _, d := range recent10[:5] {
		highPoint = math.Max(highPoint, d.High)
	}
	lowPoint := math.Inf(1)
	for _, d := range recent10[5:] {
		lowPoint = math.Min(lowPoint, d.Low)
	}
	if (lowPoint-highPoint)/highPoint >= -0.1 {
		return Pattern{}
	}

	points := 0.0
	if cur.Close > prev.Close*1.03 {
		points += 30
	}
	if cur.Flows.InstitutionTotal > 0 && prev.Flows.InstitutionTotal <= 0 {
		points += 40
	}
	if cur.Volume > prev.Volume*1.5 {
		points += 30
	}

	p := Pattern{
		Detected:   points >= 60,
		Confidence: math.Min(100, points),
		Type:       "반등",
	}
	if p.Detected {
		p.Description = "급락 후 반등 시작"
	}
	if points < 80 {
		p.Warning = "데드캣 바운스 주의"
	}
	return p
}

// DetectDistributionPattern scores institutions selling into strength:
// selling near the 20-bar high, heavy volume without price progress, and
// a retail buying spike absorbing the supply. Detected at 60 points.
func DetectDistributionPattern(data []indicator.Bar, index int) Pattern {
	if index < 10 || index >= len(data) {
		return Pattern{}
	}

	recent := window(data, index, 20)
	cur := data[index]
	points := 0.0

	high20 := math.Inf(-1)
	for _, d := range recent {
		high20 = math.Max(high20, d.High)
	}
	nearHigh := cur.Close > high20*0.95
	instSelling := cur.Flows.InstitutionTotal < 0
	if nearHigh && instSelling {
		points += 40
	}

	priceChange := (cur.Close - recent[0].Close) / recent[0].Close
	volIncrease := cur.Volume > recent[0].Volume*1.5
	if math.Abs(priceChange) < 0.02 && volIncrease && instSelling {
		points += 30
	}

	retailAmount := math.Abs(cur.Flows.Retail)
	avgRetail := 0.0
	prior := recent[:len(recent)-1]
	for _, d := range prior {
		avgRetail += math.Abs(d.Flows.Retail)
	}
	avgRetail /= float64(len(prior))
	if cur.Flows.Retail > 0 && retailAmount > avgRetail*2 && instSelling {
		points += 30
	}

	p := Pattern{
		Detected:   points >= 60,
		Confidence: math.Min(100, points),
		Type:       "분산",
	}
	if p.Detected {
		p.Description = "고점 분산 매도 진행"
	}
	return p
}
