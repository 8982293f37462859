package metrics

import (
	"sort"
	"strings"

	"capstone/insights/internal/activity"
)

// ValueCount is the number of records carrying one value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Shared is a ValueCount with its share of the total
type Shared struct {
	ValueCount
	Share Ratio `json:"share"`
}

func sortCounts(counts []ValueCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
}

func countBy(rows []activity.Record, key func(activity.Record) (string, bool)) []ValueCount {
	idx := make(map[string]int)
	var out []ValueCount
	for _, r := range rows {
		v, ok := key(r)
		if !ok {
			continue
		}
		i, seen := idx[v]
		if !seen {
			i = len(out)
			idx[v] = i
			out = append(out, ValueCount{Value: v})
		}
		out[i].Count++
	}
	sortCounts(out)
	return out
}

// TopValues returns the n most frequent non-empty values of column, ties
// broken by value. n <= 0 returns all.
func TopValues(rows []activity.Record, column string, n int) []ValueCount {
	counts := countBy(rows, func(r activity.Record) (string, bool) {
		v := strings.TrimSpace(r.Field(column))
		return v, v != ""
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Distinct counts distinct non-empty values of column
func Distinct(rows []activity.Record, column string) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		if v := strings.TrimSpace(r.Field(column)); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// CategoryShares returns each selectable category's share of all
// categorized records, most frequent first.
func CategoryShares(rows []activity.Record) []Shared {
	counts := countBy(rows, func(r activity.Record) (string, bool) {
		return r.Category, !activity.IsBlankCategory(r.Category)
	})
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	out := make([]Shared, len(counts))
	for i, c := range counts {
		out[i] = Shared{ValueCount: c, Share: Share(float64(c.Count), float64(total))}
	}
	return out
}

// UnknownValue fills empty navigation path steps
const UnknownValue = "Unknown"

// PathCount is one navigation path and how often it occurs
type PathCount struct {
	Steps []string `json:"steps"`
	Count int      `json:"count"`
}

// String joins the steps with arrows
func (p PathCount) String() string {
	return strings.Join(p.Steps, " → ")
}

// NavigationPaths groups records by the values of columns and returns the n
// most frequent paths. Empty steps become UnknownValue.
func NavigationPaths(rows []activity.Record, columns []string, n int) []PathCount {
	if len(columns) == 0 {
		return nil
	}
	counts := countBy(rows, func(r activity.Record) (string, bool) {
		steps := make([]string, len(columns))
		for i, c := range columns {
			steps[i] = strings.TrimSpace(r.Field(c))
			if steps[i] == "" {
				steps[i] = UnknownValue
			}
		}
		return strings.Join(steps, "\x00"), true
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	out := make([]PathCount, len(counts))
	for i, c := range counts {
		out[i] = PathCount{Steps: strings.Split(c.Value, "\x00"), Count: c.Count}
	}
	return out
}
