package indicator

// ScoreSignal is one named contribution to the composite chart score.
type ScoreSignal struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Score is the composite buy/sell reading shown on the advanced chart.
type Score struct {
	Score   float64       `json:"score"`
	Signals []ScoreSignal `json:"signals"`
}

// SignalScore sums weighted chart signals at index: moving-average stack,
// price vs MA20, Bollinger breaks, RSI and MFI extremes, volume surges and
// same-day smart-money net buying. Needs 60 bars of history; earlier
// indexes return the neutral zero score.
func SignalScore(data []Bar, index int) Score {
	if index < 60 || index >= len(data) {
		return Score{Signals: []ScoreSignal{}}
	}

	cur := data[index]
	score := 0.0
	signals := []ScoreSignal{}
	add := func(name, kind string, weight float64) {
		score += weight
		signals = append(signals, ScoreSignal{Name: name, Type: kind, Weight: weight})
	}

	if cur.MA20 != nil && cur.MA60 != nil && cur.MA120 != nil {
		switch {
		case *cur.MA20 > *cur.MA60 && *cur.MA60 > *cur.MA120:
			add("정배열", "bullish", 20)
		case *cur.MA20 < *cur.MA60 && *cur.MA60 < *cur.MA120:
			add("역배열", "bearish", -20)
		}
	}

	if cur.MA20 != nil {
		if cur.Close > *cur.MA20 {
			add("20일선 위", "bullish", 10)
		} else {
			add("20일선 아래", "bearish", -10)
		}
	}

	if cur.BBUpper != nil && cur.BBLower != nil {
		switch {
		case cur.Close > *cur.BBUpper:
			add("BB 상단 돌파", "bearish", -15)
		case cur.Close < *cur.BBLower:
			add("BB 하단 돌파", "bullish", 15)
		}
	}

	if cur.RSI14 != nil {
		switch {
		case *cur.RSI14 > 70:
			add("RSI 과매수", "bearish", -15)
		case *cur.RSI14 < 30:
			add("RSI 과매도", "bullish", 15)
		}
	}

	if cur.MFI14 != nil {
		switch {
		case *cur.MFI14 > 80:
			add("MFI 과매수", "bearish", -10)
		case *cur.MFI14 < 20:
			add("MFI 과매도", "bullish", 10)
		}
	}

	avgVolume := 0.0
	for _, d := range data[index-20 : index] {
		avgVolume += d.Volume
	}
	avgVolume /= 20
	if cur.Volume > avgVolume*1.5 {
		if cur.Close > data[index-1].Close {
			add("거래량 급증(상승)", "bullish", 10)
		} else if cur.Close < data[index-1].Close {
			add("거래량 급증(하락)", "bearish", -10)
		}
	}

	smartMoney := cur.Flows.Foreign + cur.Flows.InstitutionTotal
	if smartMoney > 0 {
		add("스마트머니 매수", "bullish", 20)
	} else if smartMoney < 0 {
		add("스마트머니 매도", "bearish", -20)
	}

	return Score{Score: score, Signals: signals}
}
