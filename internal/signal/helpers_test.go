package signal

import (
	"fmt"

	"github.com/DH-11027/paradise/internal/indicator"
	"github.com/DH-11027/paradise/internal/series"
)

// flatBars builds n bars at a constant price with steady positive
// smart-money flow and retail selling on every day.
func flatBars(n int, price float64) []indicator.Bar {
	bars := make([]indicator.Bar, n)
	for i := range bars {
		bars[i] = indicator.Bar{MergedBar: series.MergedBar{
			PriceBar: series.PriceBar{
				Date:   fmt.Sprintf("2024-01-%02d", i+1),
				Open:   price,
				High:   price,
				Low:    price,
				Close:  price,
				Volume: 100000,
			},
			Flows: series.FlowRecord{
				ForeignTotal:     100,
				InstitutionTotal: 50,
				Retail:           -150,
				Foreign:          100,
			},
		}}
	}
	return bars
}

// quietBars is a flat series with zero flows.
func quietBars(n int, price float64) []indicator.Bar {
	bars := flatBars(n, price)
	for i := range bars {
		bars[i].Flows = series.FlowRecord{}
	}
	return bars
}

// trendBars rises steadily by step per bar.
func trendBars(n int, start, step float64) []indicator.Bar {
	bars := make([]indicator.Bar, n)
	price := start
	for i := range bars {
		price += step
		bars[i] = indicator.Bar{MergedBar: series.MergedBar{
			PriceBar: series.PriceBar{
				Date:   fmt.Sprintf("2024-02-%02d", i%28+1),
				Open:   price - step/2,
				High:   price + step,
				Low:    price - step,
				Close:  price,
				Volume: 100000,
			},
		}}
	}
	return bars
}
