package activity

import (
	"sort"
	"time"
)

// Actors returns the sorted distinct actors of rows
func Actors(rows []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if r.Actor == "" || seen[r.Actor] {
			continue
		}
		seen[r.Actor] = true
		out = append(out, r.Actor)
	}
	sort.Strings(out)
	return out
}

// Categories returns the sorted distinct selectable categories of rows.
// Blank placeholders are never part of the universe.
func Categories(rows []Record) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if IsBlankCategory(r.Category) || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest valid timestamps. ok is false
// when no row has a usable timestamp.
func DateBounds(rows []Record) (min, max time.Time, ok bool) {
	for _, r := range rows {
		if !r.HasTimestamp {
			continue
		}
		if !ok || r.Timestamp.Before(min) {
			min = r.Timestamp
		}
		if !ok || r.Timestamp.After(max) {
			max = r.Timestamp
		}
		ok = true
	}
	return min, max, ok
}
