package csvio

import (
	"math"
	"strconv"
	"strings"
)

var unitReplacer = strings.NewReplacer(",", "", "원", "", "주", "", "%", "")

// ToNumber coerces a raw cell into a finite number. It is a total function:
// it never fails, and anything unparseable (including NaN/Inf results)
// coerces to 0.
//
// Handles comma grouping, 원/주/% unit glyphs, and scientific notation like
// -1.1E+09. Empty cells and the KRX "-" placeholder are 0.
func ToNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" || s == "-" {
		return 0
	}

	clean := unitReplacer.Replace(s)
	n, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
