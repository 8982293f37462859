package metrics

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Ratio is a percentage that may be undefined. An undefined ratio means there
// was no basis for comparison; it is never reported as 0.
type Ratio struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Undefined is the ratio of anything over a zero basis
var Undefined = Ratio{}

func defined(v float64) Ratio {
	return Ratio{Value: round2(v), Defined: true}
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// String formats the ratio as "12.34%" or "N/A"
func (r Ratio) String() string {
	if !r.Defined {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", r.Value)
}

// Arrow formats the ratio with a direction marker: "↑ 5.00%", "↓ 2.50%", "0.00%" or "N/A"
func (r Ratio) Arrow() string {
	switch {
	case !r.Defined:
		return "N/A"
	case r.Value > 0:
		return fmt.Sprintf("↑ %.2f%%", r.Value)
	case r.Value < 0:
		return fmt.Sprintf("↓ %.2f%%", math.Abs(r.Value))
	default:
		return fmt.Sprintf("%.2f%%", r.Value)
	}
}

// Share returns part/total as a percentage
func Share(part, total float64) Ratio {
	if total == 0 {
		return Undefined
	}
	return defined(part / total * 100)
}

// PercentChange returns the change from previous to current as a percentage
func PercentChange(current, previous float64) Ratio {
	if previous == 0 {
		return Undefined
	}
	return defined((current - previous) / previous * 100)
}

// Average returns sum/count, undefined for zero count
func Average(sum float64, count int) (float64, bool) {
	if count == 0 {
		return 0, false
	}
	return round2(sum / float64(count)), true
}

// HumanFormat abbreviates n with K, M or B suffixes using precision decimals
func HumanFormat(n float64, precision int) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.*fB", precision, n/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.*fM", precision, n/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.*fK", precision, n/1_000)
	default:
		return fmt.Sprintf("%.*f", precision, n)
	}
}
