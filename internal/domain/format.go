package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Time returns the chart point's timestamp in UTC.
func (p ChartPoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// FormatUSD renders v with two decimals and thousands separators, e.g.
// "12,345.60". Prices under one dollar keep up to six decimals.
func FormatUSD(v float64) string {
	d := decimal.NewFromFloat(v)
	if abs := d.Abs(); abs.LessThan(decimal.NewFromInt(1)) && !abs.IsZero() {
		s := d.Round(6).String()
		if _, frac, ok := strings.Cut(s, "."); !ok {
			s += ".00"
		} else if len(frac) < 2 {
			s += "0"
		}
		return s
	}

	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
