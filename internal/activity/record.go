package activity

import (
	"strings"
	"time"

	"capstone/insights/internal/hierarchy"
)

// DefaultTimestampLayouts are tried in order when a schema names none
var DefaultTimestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"02-01-2006",
	"01/02/2006",
	"1/2/2006 15:04",
}

// Schema maps one source's column names onto the logical fields the filter
// pipeline needs.
type Schema struct {
	Name             string
	ActorColumn      string
	CategoryColumn   string
	TimestampColumn  string
	TimestampLayouts []string
	// Exclude drops rows whose column value (case-insensitive) is listed
	Exclude map[string][]string
	// KPIs maps tile labels to the column whose distinct values they count
	KPIs []KPI
	// PathColumns are grouped into navigation paths, shallowest first
	PathColumns []string
	// SearchColumns are matched by free-text search
	SearchColumns []string
}

// KPI is one distinct-count tile
type KPI struct {
	Label  string
	Column string
}

// Record is one activity row with its logical fields extracted. Actor and
// Category are normalized.
type Record struct {
	Actor        string
	Category     string
	Timestamp    time.Time
	HasTimestamp bool
	Fields       map[string]string
}

// Field returns a raw source column value
func (r Record) Field(column string) string {
	return r.Fields[column]
}

// Decode maps raw rows onto Records. Rows matching an Exclude rule are dropped.
func (s Schema) Decode(rows []map[string]string) []Record {
	out := make([]Record, 0, len(rows))
	for _, fields := range rows {
		if s.excluded(fields) {
			continue
		}
		r := Record{
			Actor:    hierarchy.Normalize(fields[s.ActorColumn]),
			Category: hierarchy.Normalize(fields[s.CategoryColumn]),
			Fields:   fields,
		}
		r.Timestamp, r.HasTimestamp = ParseTimestamp(fields[s.TimestampColumn], s.TimestampLayouts)
		out = append(out, r)
	}
	return out
}

func (s Schema) excluded(fields map[string]string) bool {
	for col, values := range s.Exclude {
		v := strings.TrimSpace(fields[col])
		for _, x := range values {
			if strings.EqualFold(v, x) {
				return true
			}
		}
	}
	return false
}

// ParseTimestamp tries each layout in turn. ok is false for empty or
// unparseable values such as "N/A".
func ParseTimestamp(value string, layouts []string) (t time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var blankCategories = map[string]bool{
	"": true, "0": true, "null": true, "none": true, "nan": true,
}

// IsBlankCategory reports whether v is one of the placeholder values that
// mean "no category" ("", "0", "null", "none", "nan", any case).
func IsBlankCategory(v string) bool {
	return blankCategories[hierarchy.Normalize(v)]
}
