package metrics

import "capstone/insights/internal/activity"

// TopN is the number of entries shown in top lists
const TopN = 5

// Tile is one KPI tile
type Tile struct {
	Label string       `json:"label"`
	Value int          `json:"value"`
	Top   []ValueCount `json:"top"`
}

// Trend holds the period-over-period view counts
type Trend struct {
	Windows    Windows       `json:"windows"`
	Monthly    []PeriodCount `json:"monthly"`
	MoM        Ratio         `json:"mom"`
	QoQ        Ratio         `json:"qoq"`
	YoY        Ratio         `json:"yoy"`
	HasHistory bool          `json:"has_history"`
}

// Summary is everything the dashboard renders for one filtered result
type Summary struct {
	Views      int          `json:"views"`
	Actors     int          `json:"actors"`
	Tiles      []Tile       `json:"tiles"`
	Categories []Shared     `json:"categories"`
	Paths      []PathCount  `json:"paths"`
	Groups     []GroupUsage `json:"groups,omitempty"`
	Trend      Trend        `json:"trend"`
}

// Summarize computes the dashboard metrics for a filter result. Tiles, paths
// and trends use the fully filtered rows; category shares use the scoped
// baseline so the denominator covers every category.
func Summarize(res *activity.Result, schema activity.Schema) Summary {
	rows := res.Rows
	s := Summary{
		Views:      len(rows),
		Actors:     len(activity.Actors(rows)),
		Categories: CategoryShares(res.Scoped),
		Paths:      NavigationPaths(rows, schema.PathColumns, TopN),
	}
	for _, k := range schema.KPIs {
		s.Tiles = append(s.Tiles, Tile{
			Label: k.Label,
			Value: Distinct(rows, k.Column),
			Top:   TopValues(rows, k.Column, TopN),
		})
	}
	if len(schema.PathColumns) >= 2 {
		s.Groups = ClassifyByMedian(UsageByGroup(rows, schema.PathColumns[0], schema.PathColumns[len(schema.PathColumns)-1]))
	}

	if w, ok := TrailingWindows(rows); ok {
		monthly := CountByPeriod(rows, Month)
		s.Trend = Trend{
			Windows:    w,
			Monthly:    monthly,
			MoM:        LastChange(monthly),
			QoQ:        LastChange(CountByPeriod(rows, Quarter)),
			YoY:        LastChange(CountByPeriod(rows, Year)),
			HasHistory: true,
		}
	}
	return s
}
