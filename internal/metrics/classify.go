package metrics

import (
	"sort"
	"strings"

	"capstone/insights/internal/activity"
)

// Utilization classes
const (
	Underutilized = "Underutilized"
	Overutilized  = "Over-utilized"
	Normal        = "Normal"
)

// Median returns the median of values, false for an empty slice
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return (s[mid-1] + s[mid]) / 2, true
}

// GroupUsage summarizes one group (for example a subject area)
type GroupUsage struct {
	Group          string  `json:"group"`
	Accesses       int     `json:"accesses"`
	Items          int     `json:"items"` // distinct dashboards/pages in the group
	AvgPerItem     float64 `json:"avg_per_item"`
	Classification string  `json:"classification"`
}

// UsageByGroup counts accesses and distinct items per group column value
func UsageByGroup(rows []activity.Record, groupColumn, itemColumn string) []GroupUsage {
	idx := make(map[string]int)
	items := make(map[string]map[string]struct{})
	var out []GroupUsage
	for _, r := range rows {
		g := strings.TrimSpace(r.Field(groupColumn))
		if g == "" {
			g = UnknownValue
		}
		i, ok := idx[g]
		if !ok {
			i = len(out)
			idx[g] = i
			out = append(out, GroupUsage{Group: g})
			items[g] = make(map[string]struct{})
		}
		out[i].Accesses++
		item := strings.TrimSpace(r.Field(itemColumn))
		if item == "" {
			item = UnknownValue
		}
		items[g][item] = struct{}{}
	}
	for i := range out {
		out[i].Items = len(items[out[i].Group])
		out[i].AvgPerItem, _ = Average(float64(out[i].Accesses), out[i].Items)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Group < out[j].Group })
	return out
}

// ClassifyByMedian labels each group against the medians of accesses and
// items: many items but few accesses is Underutilized, few items but many
// accesses is Over-utilized, everything else is Normal.
func ClassifyByMedian(groups []GroupUsage) []GroupUsage {
	accesses := make([]float64, len(groups))
	items := make([]float64, len(groups))
	for i, g := range groups {
		accesses[i] = float64(g.Accesses)
		items[i] = float64(g.Items)
	}
	accessMedian, ok := Median(accesses)
	if !ok {
		return groups
	}
	itemMedian, _ := Median(items)

	out := make([]GroupUsage, len(groups))
	for i, g := range groups {
		switch {
		case float64(g.Items) > itemMedian && float64(g.Accesses) < accessMedian:
			g.Classification = Underutilized
		case float64(g.Items) < itemMedian && float64(g.Accesses) > accessMedian:
			g.Classification = Overutilized
		default:
			g.Classification = Normal
		}
		out[i] = g
	}
	return out
}
