package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capstone/insights/internal/hierarchy"
)

var testSchema = Schema{
	Name:            "tableau",
	ActorColumn:     "name",
	CategoryColumn:  "role",
	TimestampColumn: "at",
	Exclude:         map[string][]string{"id": {"SA-OACProd"}},
	SearchColumns:   []string{"workbook"},
}

func raw(name, role, at string) map[string]string {
	return map[string]string{"name": name, "role": role, "at": at, "workbook": "Sales " + name}
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func actors(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Actor
	}
	return out
}

func TestDecode(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw(" East ", " Viewer", "2024-03-01"),
		raw("west", "admin", "N/A"),
		{"name": "svc", "id": "sa-oacprod"},
	})
	require.Len(t, rows, 2, "excluded row dropped")
	assert.Equal(t, "east", rows[0].Actor)
	assert.Equal(t, "viewer", rows[0].Category)
	assert.True(t, rows[0].HasTimestamp)
	assert.Equal(t, date("2024-03-01"), rows[0].Timestamp)
	assert.False(t, rows[1].HasTimestamp)
	assert.Equal(t, "Sales west", rows[1].Field("workbook"))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2024-01-31", true},
		{"2024-01-31 10:11:12", true},
		{"2024-01-31T10:11:12Z", true},
		{"31-01-2024", true},
		{"N/A", false},
		{"", false},
		{"  ", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := ParseTimestamp(tt.in, nil)
			assert.Equal(t, tt.ok, ok)
		})
	}

	_, ok := ParseTimestamp("2024-01-31", []string{"02/01/2006"})
	assert.False(t, ok, "explicit layouts replace the defaults")
}

func TestIsBlankCategory(t *testing.T) {
	for _, v := range []string{"", "0", "null", "NULL", " None ", "nan", "NaN"} {
		assert.True(t, IsBlankCategory(v), v)
	}
	assert.False(t, IsBlankCategory("viewer"))
}

func TestApply_ScenarioScopeOnly(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw("east", "viewer", "2024-01-01"),
		raw("west", "viewer", "2024-01-02"),
		raw("team1", "admin", "2024-01-03"),
	})
	permitted := hierarchy.NewIdentitySet("east", "team1")

	res := Apply(rows, permitted, Criteria{}, nil)
	assert.Equal(t, []string{"east", "team1"}, actors(res.Rows))
	assert.Equal(t, res.Scoped, res.Rows, "no secondary filter means scope only")
	assert.Equal(t, []StageCount{{Stage: "scope", Rows: 2}}, res.Counts)
}

func TestApply_EmptyScopeDeniesAll(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{raw("east", "viewer", "2024-01-01")})
	res := Apply(rows, hierarchy.IdentitySet{}, Criteria{Actor: "east"}, nil)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Scoped)
	assert.Len(t, res.Counts, 1, "secondary stages short-circuit")
}

func TestApply_AllEqualsUnset(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw("east", "viewer", "2024-01-01"),
		raw("west", "admin", "bad"),
	})
	permitted := hierarchy.NewIdentitySet("east", "west")
	unset := Apply(rows, permitted, Criteria{}, nil)
	all := Apply(rows, permitted, Criteria{Actor: "All", Category: "all"}, nil)
	assert.Equal(t, unset.Rows, all.Rows)
	assert.Len(t, all.Rows, 2, "malformed timestamps survive when no date filter is set")
	assert.Equal(t, 1, all.Ignored)
}

func TestApply_SecondaryFilters(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw("east", "viewer", "2024-01-01"),
		raw("east", "admin", "2024-01-05 16:30:00"),
		raw("team1", "viewer", "2024-02-01"),
		raw("team1", "null", "2024-01-02"),
		raw("team1", "viewer", "N/A"),
		raw("west", "viewer", "2024-01-01"),
	})
	permitted := hierarchy.NewIdentitySet("east", "team1")

	tests := []struct {
		name    string
		c       Criteria
		want    []string
		ignored int
	}{
		{"actor", Criteria{Actor: " EAST "}, []string{"east", "east"}, 1},
		{"category", Criteria{Category: "Viewer"}, []string{"east", "team1", "team1"}, 1},
		{"blank category never matches", Criteria{Category: "null"}, []string{}, 1},
		{"date range inclusive by day", Criteria{From: date("2024-01-01"), To: date("2024-01-05")}, []string{"east", "east", "team1"}, 1},
		{"open upper bound", Criteria{From: date("2024-01-31")}, []string{"team1"}, 1},
		{"combined", Criteria{Actor: "team1", Category: "viewer", To: date("2024-12-31")}, []string{"team1"}, 1},
		{"search", Criteria{Search: "sls tm"}, []string{"team1", "team1", "team1"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(rows, permitted, tt.c, testSchema.SearchColumns)
			assert.Equal(t, tt.want, actors(res.Rows))
			assert.Len(t, res.Scoped, 5, "baseline is scope-only")
			assert.Equal(t, tt.ignored, res.Ignored)
		})
	}
}

func TestApply_MalformedTimestampExcludedFromDateQuery(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw("east", "viewer", "N/A"),
		raw("east", "viewer", "2024-01-01"),
	})
	res := Apply(rows, hierarchy.NewIdentitySet("east"), Criteria{From: date("2000-01-01"), To: date("2100-01-01")}, nil)
	assert.Len(t, res.Rows, 1)
	assert.Equal(t, 1, res.Ignored)
}

func TestSecondaryStagesCommute(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw("east", "viewer", "2024-01-01"),
		raw("east", "admin", "2024-01-02"),
		raw("team1", "viewer", "2024-01-03"),
	})
	a := ActorStage("east")
	c := CategoryStage("viewer")
	d := DateStage(date("2024-01-01"), date("2024-01-02"))

	acd := d.Run(c.Run(a.Run(rows)))
	dca := a.Run(c.Run(d.Run(rows)))
	assert.Equal(t, acd, dca)
	assert.Len(t, acd, 1)
}

func TestUniverses(t *testing.T) {
	rows := testSchema.Decode([]map[string]string{
		raw("b", "viewer", "2024-01-05"),
		raw("a", "none", "2024-01-01"),
		raw("a", "admin", "oops"),
		raw("c", "0", "2024-02-01"),
	})
	assert.Equal(t, []string{"a", "b", "c"}, Actors(rows))
	assert.Equal(t, []string{"admin", "viewer"}, Categories(rows))

	min, max, ok := DateBounds(rows)
	require.True(t, ok)
	assert.Equal(t, date("2024-01-01"), min)
	assert.Equal(t, date("2024-02-01"), max)

	_, _, ok = DateBounds(nil)
	assert.False(t, ok)
}
