package series

// Merge left-joins flow records onto the price series by canonical date and
// threads running cumulative totals through the bars. Exactly one output
// bar per price bar; days without flow data carry zero snapshots but still
// advance nothing in the cumulative totals. Duplicate flow dates resolve
// last-wins.
func Merge(prices []PriceBar, flows []FlowRecord) []MergedBar {
	byDate := make(map[string]FlowRecord, len(flows))
	for _, f := range flows {
		byDate[f.Date] = f
	}

	var cum FlowRecord
	merged := make([]MergedBar, 0, len(prices))
	for _, bar := range prices {
		day := byDate[bar.Date]
		day.Date = bar.Date
		cum.Add(day)

		snapshot := cum
		snapshot.Date = bar.Date
		merged = append(merged, MergedBar{
			PriceBar:   bar,
			Flows:      day,
			Cum:        snapshot,
			ForeignNet: day.ForeignTotal,
			InstNet:    day.InstitutionTotal,
			PersonNet:  day.Retail,
			CumForeign: snapshot.ForeignTotal,
			CumInst:    snapshot.InstitutionTotal,
			CumPerson:  snapshot.Retail,
		})
	}
	return merged
}
