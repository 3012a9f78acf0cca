// Package series turns tokenized CSV rows into the canonical price and
// investor-flow series and merges them on the trading-day key.
package series

// PriceBar is one day of OHLCV data, keyed by canonical YYYY-MM-DD date.
// Bars are immutable once loaded; later stages attach new fields on their
// own wrapper types instead of mutating these.
type PriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`

	// Optional flow columns carried on merged single-CSV uploads; only the
	// derive-from-price fallback reads these.
	Foreign     float64 `json:"-"`
	Institution float64 `json:"-"`
}

// FlowRecord is one day of per-category investor net-buy amounts.
// The 12 base categories mirror the KRX classification; ForeignTotal
// (외국인합계) is always derived, never read from source.
type FlowRecord struct {
	Date string `json:"date"`

	FinancialInvestment float64 `json:"금융투자"`
	Insurance           float64 `json:"보험"`
	InvestmentTrust     float64 `json:"투신"`
	PrivateEquity       float64 `json:"사모"`
	Bank                float64 `json:"은행"`
	OtherFinance        float64 `json:"기타금융"`
	Pension             float64 `json:"연기금"`
	OtherCorporation    float64 `json:"기타법인"`
	Retail              float64 `json:"개인"`
	Foreign             float64 `json:"외국인"`
	OtherForeign        float64 `json:"기타외국인"`
	InstitutionTotal    float64 `json:"기관합계"`

	ForeignTotal float64 `json:"외국인합계"`
}

// MergedBar is a PriceBar joined with that day's flow snapshot and the
// running cumulative totals through this bar, inclusive.
type MergedBar struct {
	PriceBar

	Flows FlowRecord `json:"_flows"`
	Cum   FlowRecord `json:"_cum"`

	// Convenience scalars mirrored from Flows/Cum for the chart layer.
	ForeignNet float64 `json:"foreign"`
	InstNet    float64 `json:"inst"`
	PersonNet  float64 `json:"person"`
	CumForeign float64 `json:"cumForeign"`
	CumInst    float64 `json:"cumInst"`
	CumPerson  float64 `json:"cumPerson"`
}

// institutionParts are the 8 sub-categories summed into 기관합계 when the
// source leaves it empty or zero.
func (f *FlowRecord) institutionParts() float64 {
	return f.FinancialInvestment + f.Insurance + f.InvestmentTrust + f.PrivateEquity +
		f.Bank + f.OtherFinance + f.Pension + f.OtherCorporation
}

// RecomputeTotals fills 기관합계 from the 8 institutional sub-categories when
// absent/zero in the source and always derives 외국인합계.
func (f *FlowRecord) RecomputeTotals() {
	if f.InstitutionTotal == 0 {
		f.InstitutionTotal = f.institutionParts()
	}
	f.ForeignTotal = f.Foreign + f.OtherForeign
}

// Scale multiplies every base category by m (share-count → currency
// conversion) and rederives 외국인합계.
func (f *FlowRecord) Scale(m float64) {
	f.FinancialInvestment *= m
	f.Insurance *= m
	f.InvestmentTrust *= m
	f.PrivateEquity *= m
	f.Bank *= m
	f.OtherFinance *= m
	f.Pension *= m
	f.OtherCorporation *= m
	f.Retail *= m
	f.Foreign *= m
	f.OtherForeign *= m
	f.InstitutionTotal *= m
	f.ForeignTotal = f.Foreign + f.OtherForeign
}

// Add accumulates o into f across every category including the derived
// total; used for the running cumulative snapshots.
func (f *FlowRecord) Add(o FlowRecord) {
	f.FinancialInvestment += o.FinancialInvestment
	f.Insurance += o.Insurance
	f.InvestmentTrust += o.InvestmentTrust
	f.PrivateEquity += o.PrivateEquity
	f.Bank += o.Bank
	f.OtherFinance += o.OtherFinance
	f.Pension += o.Pension
	f.OtherCorporation += o.OtherCorporation
	f.Retail += o.Retail
	f.Foreign += o.Foreign
	f.OtherForeign += o.OtherForeign
	f.InstitutionTotal += o.InstitutionTotal
	f.ForeignTotal += o.ForeignTotal
}

// baseValues returns the 12 base category values in KRX header order.
func (f *FlowRecord) baseValues() []float64 {
	return []float64{
		f.FinancialInvestment, f.Insurance, f.InvestmentTrust, f.PrivateEquity,
		f.Bank, f.OtherFinance, f.Pension, f.OtherCorporation,
		f.Retail, f.Foreign, f.OtherForeign, f.InstitutionTotal,
	}
}
