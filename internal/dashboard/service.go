// Package dashboard composes the login gate, subtree selection and the
// activity filter pipeline into per-session views.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"capstone/insights/internal/activity"
	"capstone/insights/internal/auth"
	"capstone/insights/internal/db"
	"capstone/insights/internal/hierarchy"
	"capstone/insights/internal/metrics"
)

// ErrUnknownSource is returned for a source without a configured schema
var ErrUnknownSource = errors.New("unknown activity source")

// Store is the read side of the database the service needs
type Store interface {
	AllHierarchy() ([]db.HierarchyRow, error)
	ActivityBySource(source string) ([]db.ActivityRow, error)
}

// Service serves dashboard views. The hierarchy tree and decoded activity
// are loaded on first use and kept until Reload.
type Service struct {
	store    Store
	schemas  map[string]activity.Schema
	verifier auth.Verifier
	log      *logrus.Entry

	mu      sync.Mutex
	tree    *hierarchy.Tree
	gate    *auth.Gate
	records map[string][]activity.Record
}

// New creates a Service. A nil logger discards log output.
func New(store Store, schemas map[string]activity.Schema, verifier auth.Verifier, log *logrus.Entry) *Service {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = logrus.NewEntry(l)
	}
	return &Service{
		store:    store,
		schemas:  schemas,
		verifier: verifier,
		log:      log,
		records:  map[string][]activity.Record{},
	}
}

// Sources returns the configured source names in order
func (s *Service) Sources() []string {
	names := make([]string, 0, len(s.schemas))
	for n := range s.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Reload drops the cached tree and activity
func (s *Service) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = nil
	s.gate = nil
	s.records = map[string][]activity.Record{}
}

func (s *Service) loadTree() (*hierarchy.Tree, *auth.Gate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree != nil {
		return s.tree, s.gate, nil
	}
	rows, err := s.store.AllHierarchy()
	if err != nil {
		return nil, nil, fmt.Errorf("loading hierarchy: %w", err)
	}
	tree, err := hierarchy.Build(hierarchy.RowsFromDB(rows))
	if err != nil {
		return nil, nil, fmt.Errorf("building hierarchy: %w", err)
	}
	s.tree = tree
	s.gate = auth.NewGate(tree, s.verifier, s.log)
	s.log.WithFields(logrus.Fields{
		"rows":  tree.RowCount(),
		"nodes": tree.NodeCount(),
	}).Debug("hierarchy loaded")
	return s.tree, s.gate, nil
}

func (s *Service) loadRecords(source string) ([]activity.Record, activity.Schema, error) {
	schema, ok := s.schemas[source]
	if !ok {
		return nil, activity.Schema{}, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if recs, ok := s.records[source]; ok {
		return recs, schema, nil
	}
	stored, err := s.store.ActivityBySource(source)
	if err != nil {
		return nil, schema, fmt.Errorf("loading %s activity: %w", source, err)
	}
	raw := make([]map[string]string, len(stored))
	for i, r := range stored {
		raw[i] = r.Fields
	}
	recs := schema.Decode(raw)
	s.records[source] = recs
	s.log.WithFields(logrus.Fields{
		"source":  source,
		"stored":  len(stored),
		"decoded": len(recs),
	}).Debug("activity loaded")
	return recs, schema, nil
}

// Login authenticates sess against the hierarchy's accounts
func (s *Service) Login(sess *auth.Session, accountKey, secret string) (auth.Identity, error) {
	_, gate, err := s.loadTree()
	if err != nil {
		return "", err
	}
	return gate.Authenticate(sess, accountKey, secret)
}

// Logout returns sess to Anonymous
func (s *Service) Logout(sess *auth.Session) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		gate.Logout(sess)
		return
	}
	sess.Logout()
}

// Query is one dashboard request
type Query struct {
	Source   string                `json:"source"`
	Path     []hierarchy.Selection `json:"path,omitempty"`
	Criteria activity.Criteria     `json:"criteria"`
}

// LevelChoice is one hierarchy dropdown: the candidates offered at a level
// and the value chosen there, if any.
type LevelChoice struct {
	Level      string   `json:"level"`
	Selected   string   `json:"selected,omitempty"`
	Candidates []string `json:"candidates"`
}

// View is everything rendered for one query
type View struct {
	Identity  auth.Identity         `json:"identity"`
	Source    string                `json:"source"`
	Applied   []hierarchy.Selection `json:"applied,omitempty"`
	Ignored   []hierarchy.Selection `json:"ignored,omitempty"`
	Levels    []LevelChoice         `json:"levels"`
	Permitted int                   `json:"permitted"`

	Actors     []string  `json:"actors"`
	Categories []string  `json:"categories"`
	From       time.Time `json:"from,omitempty"`
	To         time.Time `json:"to,omitempty"`
	HasDates   bool      `json:"has_dates"`

	Result  *activity.Result `json:"-"`
	Summary metrics.Summary  `json:"summary"`
}

// View computes the filtered view for an authenticated session. The
// permitted identities come from the session's own subtree narrowed by
// q.Path; an identity with no hierarchy entry sees nothing.
func (s *Service) View(sess *auth.Session, q Query) (*View, error) {
	id, ok := sess.CurrentIdentity()
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}
	tree, _, err := s.loadTree()
	if err != nil {
		return nil, err
	}
	recs, schema, err := s.loadRecords(q.Source)
	if err != nil {
		return nil, err
	}

	root := hierarchy.RootScope(tree, string(id))
	sub, applied, ignored := root.ApplyPath(q.Path)
	permitted := sub.DescendantIdentities()

	res := activity.Apply(recs, permitted, q.Criteria, schema.SearchColumns)
	v := &View{
		Identity:   id,
		Source:     q.Source,
		Applied:    applied,
		Ignored:    ignored,
		Levels:     levelChoices(root, applied),
		Permitted:  permitted.Len(),
		Actors:     activity.Actors(res.Scoped),
		Categories: activity.Categories(res.Scoped),
		Result:     res,
		Summary:    metrics.Summarize(res, schema),
	}
	v.From, v.To, v.HasDates = activity.DateBounds(res.Scoped)

	entry := s.log.WithFields(logrus.Fields{
		"session":   sess.ID,
		"source":    q.Source,
		"permitted": v.Permitted,
		"rows":      len(res.Rows),
	})
	if len(ignored) > 0 {
		entry = entry.WithField("ignored", len(ignored))
	}
	entry.Debug("view computed")
	return v, nil
}

// levelChoices replays applied from root, recording the candidates offered
// at each level, then appends the open choice for the next level.
func levelChoices(root hierarchy.Subtree, applied []hierarchy.Selection) []LevelChoice {
	var out []LevelChoice
	cur := root
	for _, sel := range applied {
		out = append(out, LevelChoice{Level: sel.Level, Selected: sel.Value, Candidates: cur.Candidates()})
		cur, _ = cur.Descend(sel.Level, sel.Value)
	}
	if next := cur.NextLevel(); next != "" {
		if c := cur.Candidates(); len(c) > 0 {
			out = append(out, LevelChoice{Level: next, Candidates: c})
		}
	}
	return out
}
