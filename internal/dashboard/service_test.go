package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capstone/insights/internal/activity"
	"capstone/insights/internal/auth"
	"capstone/insights/internal/db"
	"capstone/insights/internal/hierarchy"
)

const passphrase = "open sesame"

type fakeStore struct {
	hierarchy     []db.HierarchyRow
	activity      map[string][]db.ActivityRow
	err           error
	hierarchyHits int
	activityHits  int
}

func (f *fakeStore) AllHierarchy() ([]db.HierarchyRow, error) {
	f.hierarchyHits++
	return f.hierarchy, f.err
}

func (f *fakeStore) ActivityBySource(source string) ([]db.ActivityRow, error) {
	f.activityHits++
	return f.activity[source], f.err
}

func hrow(key, name string, levels ...string) db.HierarchyRow {
	r := db.HierarchyRow{AccountKey: key, DisplayName: name}
	for i := range levels {
		r.Levels[i] = &levels[i]
	}
	return r
}

func arow(name, role, at string) db.ActivityRow {
	return db.ActivityRow{Source: "tableau", Fields: map[string]string{
		"Tableau_DisplayName": name,
		"Tableau_Roles":       role,
		"Tableau_CreatedAt":   at,
		"Tableau_Workbook":    "Sales",
	}}
}

var schemas = map[string]activity.Schema{
	"tableau": {
		Name:            "tableau",
		ActorColumn:     "Tableau_DisplayName",
		CategoryColumn:  "Tableau_Roles",
		TimestampColumn: "Tableau_CreatedAt",
		KPIs:            []activity.KPI{{Label: "Workbooks", Column: "Tableau_Workbook"}},
		SearchColumns:   []string{"Tableau_Workbook"},
	},
}

func newStore() *fakeStore {
	return &fakeStore{
		hierarchy: []db.HierarchyRow{
			hrow("u1", "Alice", "alice"),
			hrow("u2", "Ed", "alice", "east", "team1"),
			hrow("u3", "Wes", "alice", "west"),
			hrow("u4", "Carol", "dave"),
		},
		activity: map[string][]db.ActivityRow{
			"tableau": {
				arow("East", "viewer", "2024-01-10"),
				arow("team1", "viewer", "2024-02-10"),
				arow("west", "admin", "2024-02-11"),
				arow("alice", "viewer", "2024-02-12"),
				arow("zed", "viewer", "2024-02-13"),
			},
		},
	}
}

func loggedIn(t *testing.T, svc *Service, key string) *auth.Session {
	t.Helper()
	sess := auth.NewSession()
	_, err := svc.Login(sess, key, passphrase)
	require.NoError(t, err)
	return sess
}

func TestView_RequiresLogin(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	_, err := svc.View(auth.NewSession(), Query{Source: "tableau"})
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestLogin(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := auth.NewSession()

	_, err := svc.Login(sess, "u1", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(sess, "nobody", passphrase)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, auth.Anonymous, sess.State())

	id, err := svc.Login(sess, "u1", passphrase)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity("alice"), id)

	svc.Logout(sess)
	assert.Equal(t, auth.Anonymous, sess.State())
}

func TestView_RootScope(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := loggedIn(t, svc, "u1")

	v, err := svc.View(sess, Query{Source: "tableau"})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Permitted, "east, team1, west")
	assert.Equal(t, []string{"east", "team1", "west"}, v.Actors, "own rows are not part of the scope")
	assert.Equal(t, []string{"admin", "viewer"}, v.Categories)
	assert.True(t, v.HasDates)
	assert.Equal(t, 3, v.Summary.Views)
	assert.Equal(t, []LevelChoice{{Level: "H2", Candidates: []string{"east", "west"}}}, v.Levels)
}

func TestView_PathNarrowsScope(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := loggedIn(t, svc, "u1")

	v, err := svc.View(sess, Query{
		Source: "tableau",
		Path: []hierarchy.Selection{
			{Level: "H2", Value: "east"},
			{Level: "H4", Value: "team1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []hierarchy.Selection{{Level: "H2", Value: "east"}}, v.Applied)
	assert.Equal(t, []hierarchy.Selection{{Level: "H4", Value: "team1"}}, v.Ignored, "out-of-order level is ignored")
	assert.Equal(t, 2, v.Permitted)
	assert.Equal(t, []LevelChoice{
		{Level: "H2", Selected: "east", Candidates: []string{"east", "west"}},
		{Level: "H3", Candidates: []string{"team1"}},
	}, v.Levels)
	assert.Len(t, v.Result.Rows, 2)
}

func TestView_SecondaryCriteria(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := loggedIn(t, svc, "u1")

	v, err := svc.View(sess, Query{Source: "tableau", Criteria: activity.Criteria{Category: "viewer"}})
	require.NoError(t, err)
	assert.Len(t, v.Result.Rows, 2)
	assert.Len(t, v.Result.Scoped, 3, "dropdown universes come from the scoped rows")
	assert.Equal(t, []string{"east", "team1", "west"}, v.Actors)
}

func TestView_IdentityWithoutRootSeesNothing(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := loggedIn(t, svc, "u3")

	v, err := svc.View(sess, Query{Source: "tableau"})
	require.NoError(t, err)
	assert.Equal(t, 0, v.Permitted)
	assert.True(t, v.Result.Empty())
	assert.Empty(t, v.Levels)
	assert.False(t, v.HasDates)
}

func TestView_UnknownSource(t *testing.T) {
	svc := New(newStore(), schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := loggedIn(t, svc, "u1")
	_, err := svc.View(sess, Query{Source: "powerbi"})
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestService_CachesUntilReload(t *testing.T) {
	store := newStore()
	svc := New(store, schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	sess := loggedIn(t, svc, "u1")

	for i := 0; i < 3; i++ {
		_, err := svc.View(sess, Query{Source: "tableau"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.hierarchyHits)
	assert.Equal(t, 1, store.activityHits)

	svc.Reload()
	_, err := svc.View(sess, Query{Source: "tableau"})
	require.NoError(t, err)
	assert.Equal(t, 2, store.hierarchyHits)
	assert.Equal(t, 2, store.activityHits)
}

func TestService_StoreErrors(t *testing.T) {
	store := newStore()
	store.err = errors.New("disk gone")
	svc := New(store, schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	_, err := svc.Login(auth.NewSession(), "u1", passphrase)
	assert.ErrorContains(t, err, "disk gone")
}

func TestService_AmbiguousHierarchy(t *testing.T) {
	store := newStore()
	store.hierarchy = append(store.hierarchy, hrow("u9", " alice ", "x"))
	svc := New(store, schemas, auth.SharedPassphrase{Passphrase: passphrase}, nil)
	_, err := svc.Login(auth.NewSession(), "u1", passphrase)
	assert.ErrorIs(t, err, hierarchy.ErrAmbiguousIdentity)
}

func TestSources(t *testing.T) {
	svc := New(newStore(), map[string]activity.Schema{"b": {}, "a": {}}, auth.BcryptVerifier{}, nil)
	assert.Equal(t, []string{"a", "b"}, svc.Sources())
}
