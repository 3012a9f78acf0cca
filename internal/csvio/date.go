package csvio

import (
	"fmt"
	"strings"
	"time"
)

// fallback layouts tried when the cell is not a plain 3-part date
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006.01.02",
	"2006.1.2",
}

// NormalizeDate canonicalizes a raw date cell to YYYY-MM-DD. Two cells that
// normalize to the same string are the same trading day, regardless of
// separator style or zero padding. Unparseable input is returned trimmed but
// otherwise unchanged; a key that matches nothing simply never joins, which
// is the accepted degradation.
//
// Idempotent: NormalizeDate(NormalizeDate(x)) == NormalizeDate(x).
func NormalizeDate(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}

	// ISO datetime: keep the date part only
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}

	s = strings.ReplaceAll(s, "/", "-")

	if parts := strings.Split(s, "-"); len(parts) == 3 {
		return fmt.Sprintf("%s-%s-%s", parts[0], pad2(parts[1]), pad2(parts[2]))
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return s
}

// ParseDay parses a canonical YYYY-MM-DD key into a time.Time for
// chronological comparison. The zero time signals an unparseable key.
func ParseDay(key string) time.Time {
	t, err := time.Parse("2006-01-02", NormalizeDate(key))
	if err != nil {
		return time.Time{}
	}
	return t
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
