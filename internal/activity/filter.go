package activity

import (
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"capstone/insights/internal/hierarchy"
)

// AllValue leaves a secondary filter unset
const AllValue = "All"

// Stage is one named, pure filter step
type Stage struct {
	Name string
	Keep func(Record) bool
}

// Run returns the records of in that the stage keeps. in is not modified.
func (s Stage) Run(in []Record) []Record {
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if s.Keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ScopeStage keeps records whose actor is a permitted identity. An empty set
// keeps nothing.
func ScopeStage(permitted hierarchy.IdentitySet) Stage {
	return Stage{Name: "scope", Keep: func(r Record) bool {
		return permitted.Has(r.Actor)
	}}
}

// ActorStage keeps records of one actor
func ActorStage(actor string) Stage {
	want := hierarchy.Normalize(actor)
	return Stage{Name: "actor", Keep: func(r Record) bool {
		return r.Actor == want
	}}
}

// CategoryStage keeps records of one category. Blank categories never match,
// including when category itself is a blank placeholder.
func CategoryStage(category string) Stage {
	want := hierarchy.Normalize(category)
	return Stage{Name: "category", Keep: func(r Record) bool {
		return !IsBlankCategory(r.Category) && r.Category == want
	}}
}

// DateStage keeps records whose timestamp falls on a calendar day within
// [from, to]. Records without a valid timestamp are dropped. A zero bound is open.
func DateStage(from, to time.Time) Stage {
	lo, hi := day(from), day(to)
	return Stage{Name: "date", Keep: func(r Record) bool {
		if !r.HasTimestamp {
			return false
		}
		d := day(r.Timestamp)
		if !from.IsZero() && d.Before(lo) {
			return false
		}
		if !to.IsZero() && d.After(hi) {
			return false
		}
		return true
	}}
}

// SearchStage keeps records where any of columns fuzzily contains query
func SearchStage(query string, columns []string) Stage {
	return Stage{Name: "search", Keep: func(r Record) bool {
		for _, c := range columns {
			if fuzzy.MatchFold(query, r.Fields[c]) {
				return true
			}
		}
		return false
	}}
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Criteria are the optional secondary filters. Empty strings and AllValue
// leave a filter unset; zero times leave a bound open.
type Criteria struct {
	Actor    string    `json:"actor,omitempty"`
	Category string    `json:"category,omitempty"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Search   string    `json:"search,omitempty"`
}

func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, AllValue)
}

// HasDateRange reports whether either date bound is set
func (c Criteria) HasDateRange() bool {
	return !c.From.IsZero() || !c.To.IsZero()
}

// Stages returns the secondary stages in pipeline order: actor, category,
// date, search. Unset criteria contribute no stage.
func (c Criteria) Stages(searchColumns []string) []Stage {
	var stages []Stage
	if isSet(c.Actor) {
		stages = append(stages, ActorStage(c.Actor))
	}
	if isSet(c.Category) {
		stages = append(stages, CategoryStage(c.Category))
	}
	if c.HasDateRange() {
		stages = append(stages, DateStage(c.From, c.To))
	}
	if q := strings.TrimSpace(c.Search); q != "" && len(searchColumns) > 0 {
		stages = append(stages, SearchStage(q, searchColumns))
	}
	return stages
}

// StageCount records how many rows survived a stage
type StageCount struct {
	Stage string `json:"stage"`
	Rows  int    `json:"rows"`
}

// Result is the output of Apply
type Result struct {
	// Rows is the fully filtered view
	Rows []Record
	// Scoped is the permission-scoped baseline before secondary filters
	Scoped []Record
	// Ignored counts scoped rows without a usable timestamp
	Ignored int
	Counts  []StageCount
}

// Empty reports whether nothing is left to display
func (r *Result) Empty() bool { return len(r.Rows) == 0 }

// Apply runs the pipeline: scope first, then each secondary stage left to
// right against the scope-restricted rows.
func Apply(rows []Record, permitted hierarchy.IdentitySet, c Criteria, searchColumns []string) *Result {
	scoped := ScopeStage(permitted).Run(rows)
	res := &Result{
		Scoped: scoped,
		Counts: []StageCount{{Stage: "scope", Rows: len(scoped)}},
	}
	for _, r := range scoped {
		if !r.HasTimestamp {
			res.Ignored++
		}
	}
	if len(scoped) == 0 {
		res.Rows = scoped
		return res
	}

	cur := scoped
	for _, st := range c.Stages(searchColumns) {
		cur = st.Run(cur)
		res.Counts = append(res.Counts, StageCount{Stage: st.Name, Rows: len(cur)})
	}
	res.Rows = cur
	return res
}
