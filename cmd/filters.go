package cmd

import (
	"fmt"
	"strings"
	"time"

	"capstone/insights/internal/hierarchy"
)

const dateLayout = "2006-01-02"

// parseSelections parses "H2=east" style arguments in order
func parseSelections(args []string) ([]hierarchy.Selection, error) {
	out := make([]hierarchy.Selection, 0, len(args))
	for _, a := range args {
		level, value, ok := strings.Cut(a, "=")
		level = strings.ToUpper(strings.TrimSpace(level))
		if !ok || hierarchy.ParseLevel(level) < 2 {
			return nil, fmt.Errorf("invalid selection %q (want H2=value .. H%d=value)", a, hierarchy.MaxLevels)
		}
		out = append(out, hierarchy.Selection{Level: level, Value: strings.TrimSpace(value)})
	}
	return out, nil
}

// parseDate parses a YYYY-MM-DD bound; empty means open
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// withSelection sets level to value, dropping selections at that level and
// below. NoneValue or an empty value only clears.
func withSelection(path []hierarchy.Selection, level, value string) []hierarchy.Selection {
	n := hierarchy.ParseLevel(level)
	out := make([]hierarchy.Selection, 0, len(path)+1)
	for _, sel := range path {
		if hierarchy.ParseLevel(sel.Level) < n {
			out = append(out, sel)
		}
	}
	if value != "" && !strings.EqualFold(value, hierarchy.NoneValue) {
		out = append(out, hierarchy.Selection{Level: hierarchy.LevelName(n), Value: value})
	}
	return out
}
