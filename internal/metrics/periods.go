package metrics

import (
	"fmt"
	"sort"
	"time"

	"capstone/insights/internal/activity"
)

// Period is a calendar bucket size
type Period int

const (
	Month Period = iota
	Quarter
	Year
)

func (p Period) String() string {
	switch p {
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	default:
		return "month"
	}
}

// PeriodCount is the number of records in one bucket
type PeriodCount struct {
	Label string    `json:"label"` // "2024-03", "2024Q1", "2024"
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

func bucket(t time.Time, p Period) (time.Time, string) {
	y, m, _ := t.Date()
	switch p {
	case Year:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), fmt.Sprintf("%d", y)
	case Quarter:
		q := (int(m)-1)/3 + 1
		return time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC), fmt.Sprintf("%dQ%d", y, q)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), fmt.Sprintf("%d-%02d", y, m)
	}
}

// CountByPeriod buckets records with valid timestamps, oldest bucket first.
// Only buckets with at least one record are returned.
func CountByPeriod(rows []activity.Record, p Period) []PeriodCount {
	idx := make(map[time.Time]int)
	var out []PeriodCount
	for _, r := range rows {
		if !r.HasTimestamp {
			continue
		}
		start, label := bucket(r.Timestamp, p)
		i, ok := idx[start]
		if !ok {
			i = len(out)
			idx[start] = i
			out = append(out, PeriodCount{Label: label, Start: start})
		}
		out[i].Count++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// LastChange compares the last two buckets. Fewer than two buckets, or an
// empty previous bucket, is undefined.
func LastChange(periods []PeriodCount) Ratio {
	if len(periods) < 2 {
		return Undefined
	}
	cur := periods[len(periods)-1].Count
	prev := periods[len(periods)-2].Count
	return PercentChange(float64(cur), float64(prev))
}

// Windows counts records in trailing windows ending at the latest timestamp
type Windows struct {
	Latest  time.Time `json:"latest"`
	Last30  int       `json:"last_30_days"`
	Last90  int       `json:"last_90_days"`
	Last365 int       `json:"last_365_days"`
}

// TrailingWindows counts records within 30, 90 and 365 days of the latest
// timestamp. ok is false when no record has a timestamp.
func TrailingWindows(rows []activity.Record) (Windows, bool) {
	_, latest, ok := activity.DateBounds(rows)
	if !ok {
		return Windows{}, false
	}
	w := Windows{Latest: latest}
	for _, r := range rows {
		if !r.HasTimestamp {
			continue
		}
		age := latest.Sub(r.Timestamp)
		if age <= 30*24*time.Hour {
			w.Last30++
		}
		if age <= 90*24*time.Hour {
			w.Last90++
		}
		if age <= 365*24*time.Hour {
			w.Last365++
		}
	}
	return w, true
}
