package hierarchy

import (
	"testing"

	"capstone/insights/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(key, name string, levels ...string) Row {
	return Row{AccountKey: key, DisplayName: name, Levels: levels}
}

// orgRows is a small two-branch org rooted at alice
func orgRows() []Row {
	return []Row{
		row("u1", "Alice", "alice"),
		row("u2", "East Lead", "Alice ", "east", "team1", "ann"),
		row("u3", "East Two", "alice", "east", "team2"),
		row("u4", "West Lead", "alice", "west", "team3", "", "orphan"),
		row("u5", "Bob", "bob", "north"),
	}
}

func mustBuild(t *testing.T, rows []Row) *Tree {
	t.Helper()
	tree, err := Build(rows)
	require.NoError(t, err)
	return tree
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice smith", Normalize("  Alice Smith\t"))
	assert.Equal(t, "", Normalize("   "))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"H1", 1},
		{"h2", 2},
		{" H9 ", 9},
		{"H10", 0},
		{"H0", 0},
		{"L2", 0},
		{"H", 0},
		{"H2x", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
	assert.Equal(t, "H4", LevelName(4))
}

func TestBuild_DuplicateAccount(t *testing.T) {
	_, err := Build([]Row{row("u1", "A", "a"), row("u1", "B", "b")})
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestBuild_AmbiguousIdentity(t *testing.T) {
	_, err := Build([]Row{row("u1", "Alice", "alice"), row("u2", " ALICE ", "alice")})
	assert.ErrorIs(t, err, ErrAmbiguousIdentity)
}

func TestBuild_NullEndsBranch(t *testing.T) {
	tree := mustBuild(t, orgRows())
	root := RootScope(tree, "alice")
	west, ok := root.Descend("H2", "west")
	require.True(t, ok)
	team3, ok := west.Descend("H3", "team3")
	require.True(t, ok)
	assert.Empty(t, team3.Candidates(), "value after a null level is dropped")
	assert.False(t, team3.DescendantIdentities().Has("orphan"))
}

func TestAccountLookup(t *testing.T) {
	tree := mustBuild(t, orgRows())
	a, ok := tree.Account("u1")
	require.True(t, ok)
	assert.Equal(t, "Alice", a.DisplayName)

	_, ok = tree.Account("U1")
	assert.False(t, ok, "keys are case-sensitive")
	assert.Equal(t, []string{"alice", "bob"}, tree.Roots())
	assert.Equal(t, 5, tree.RowCount())
}

func TestRootScope(t *testing.T) {
	tree := mustBuild(t, orgRows())

	s := RootScope(tree, " ALICE")
	require.False(t, s.Empty())
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "H2", s.NextLevel())
	assert.Equal(t, []string{"east", "west"}, s.Candidates())

	empty := RootScope(tree, "carol")
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Candidates())
	assert.Equal(t, 0, empty.DescendantIdentities().Len())

	assert.True(t, RootScope(nil, "alice").Empty())
}

func TestDescend_OrderEnforced(t *testing.T) {
	tree := mustBuild(t, orgRows())
	root := RootScope(tree, "alice")

	_, ok := root.Descend("H3", "team1")
	assert.False(t, ok, "H3 cannot be chosen before H2")

	_, ok = root.Descend("H2", "nowhere")
	assert.False(t, ok, "value must be a candidate")

	same, ok := root.Descend("H2", "None")
	assert.False(t, ok)
	assert.Equal(t, root, same)

	east, ok := root.Descend("H2", "east")
	require.True(t, ok)
	assert.Equal(t, []string{"team1", "team2"}, east.Candidates(), "candidates recomputed under the new parent")
	assert.Equal(t, []Selection{{Level: "H2", Value: "east"}}, east.Path())
}

func TestApplyPath_IgnoresAfterGap(t *testing.T) {
	tree := mustBuild(t, orgRows())
	root := RootScope(tree, "alice")

	s, applied, ignored := root.ApplyPath([]Selection{
		{Level: "H2", Value: "east"},
		{Level: "H4", Value: "ann"},
		{Level: "H3", Value: "team1"},
	})
	assert.Equal(t, 2, s.Depth())
	assert.Equal(t, []Selection{{Level: "H2", Value: "east"}}, applied)
	assert.Len(t, ignored, 2)

	s, applied, ignored = root.ApplyPath([]Selection{
		{Level: "H2", Value: "east"},
		{Level: "H3", Value: "team1"},
		{Level: "H4", Value: "ann"},
	})
	assert.Equal(t, 4, s.Depth())
	assert.Len(t, applied, 3)
	assert.Empty(t, ignored)
	assert.Equal(t, "H5", s.NextLevel())
	assert.Empty(t, s.Candidates())
}

func TestDescendantIdentities(t *testing.T) {
	tree := mustBuild(t, orgRows())
	root := RootScope(tree, "alice")

	all := root.DescendantIdentities()
	assert.Equal(t, []string{"ann", "east", "team1", "team2", "team3", "west"}, all.Sorted())
	assert.False(t, all.Has("alice"), "root identity is excluded")

	east, _ := root.Descend("H2", "east")
	team1, _ := east.Descend("H3", "team1")
	got := team1.DescendantIdentities()
	assert.Equal(t, []string{"ann", "east", "team1"}, got.Sorted(), "path values are included")
}

func TestDescendantIdentities_NeverGrowsOnDescent(t *testing.T) {
	tree := mustBuild(t, orgRows())
	root := RootScope(tree, "alice")
	base := root.DescendantIdentities()

	var walk func(s Subtree)
	walk = func(s Subtree) {
		set := s.DescendantIdentities()
		assert.True(t, set.SubsetOf(base), "descending to %v widened the set", s.Path())
		for _, c := range s.Candidates() {
			next, ok := s.Descend(s.NextLevel(), c)
			require.True(t, ok)
			walk(next)
		}
	}
	walk(root)
}

func TestScenario_SingleRow(t *testing.T) {
	tree := mustBuild(t, []Row{row("u1", "Alice", "alice", "east", "team1")})
	s := RootScope(tree, "alice")
	assert.Equal(t, 1, tree.RowCount())
	assert.Equal(t, []string{"east", "team1"}, s.DescendantIdentities().Sorted())
}

func TestRowsFromDB_NullLevels(t *testing.T) {
	h1, h2, hash := "alice", "east", "$2a$x"
	var dbRow db.HierarchyRow
	dbRow.AccountKey = "u1"
	dbRow.DisplayName = "Alice"
	dbRow.SecretHash = &hash
	dbRow.Levels[0] = &h1
	dbRow.Levels[1] = &h2

	rows := RowsFromDB([]db.HierarchyRow{dbRow})
	require.Len(t, rows, 1)
	assert.Equal(t, "$2a$x", rows[0].SecretHash)
	assert.Equal(t, []string{"alice", "east", "", "", "", "", "", "", ""}, rows[0].Levels)

	tree := mustBuild(t, rows)
	assert.Equal(t, []string{"east"}, RootScope(tree, "alice").Candidates())
}

func TestToDBRows(t *testing.T) {
	cols := DefaultColumns()
	assert.Equal(t, []string{"capstone_ad_account", "capstone_name", "H1"}, cols.Required())

	rows, err := ToDBRows([]map[string]string{
		{"capstone_ad_account": " u1 ", "capstone_name": "Alice ", "H1": "alice", "H2": "NULL", "H3": "team1", "secret_hash": ""},
		{"capstone_ad_account": "u2", "capstone_name": "Bob", "H1": "bob", "H2": " north ", "secret_hash": "$2a$x"},
	}, cols)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "u1", rows[0].AccountKey)
	assert.Equal(t, "Alice", rows[0].DisplayName)
	assert.Nil(t, rows[0].SecretHash)
	assert.Nil(t, rows[0].Levels[1], "NULL text is a null level")
	require.NotNil(t, rows[0].Levels[2])
	require.NotNil(t, rows[1].Levels[1])
	assert.Equal(t, "north", *rows[1].Levels[1])
	assert.Equal(t, "$2a$x", *rows[1].SecretHash)

	tree := mustBuild(t, RowsFromDB(rows))
	assert.Empty(t, RootScope(tree, "alice").Candidates(), "descent stops at the first null")

	_, err = ToDBRows([]map[string]string{{"capstone_name": "x"}}, cols)
	assert.ErrorContains(t, err, "row 1")
}
