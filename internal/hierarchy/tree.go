package hierarchy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxLevels is the number of level columns: the root identity (H1) plus the
// eight levels beneath it (H2..H9).
const MaxLevels = 9

var (
	// ErrDuplicateAccount indicates two rows share an account key
	ErrDuplicateAccount = errors.New("duplicate account key")

	// ErrAmbiguousIdentity indicates two accounts normalize to the same display name
	ErrAmbiguousIdentity = errors.New("display name shared by more than one account")
)

// Row is one hierarchy record decoupled from storage types. Empty strings in
// Levels are nulls.
type Row struct {
	AccountKey  string
	DisplayName string
	SecretHash  string
	Levels      []string
}

// Account is the credential-facing view of a row
type Account struct {
	Key         string
	DisplayName string
	SecretHash  string
}

// LevelName returns the column name of the 1-based level ("H1".."H9")
func LevelName(level int) string {
	return fmt.Sprintf("H%d", level)
}

// ParseLevel maps a column name like "H3" (any case) back to its 1-based level.
// Returns 0 for names outside H1..H9.
func ParseLevel(name string) int {
	name = strings.TrimSpace(name)
	if len(name) < 2 || (name[0] != 'H' && name[0] != 'h') {
		return 0
	}
	level := 0
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return 0
		}
		level = level*10 + int(c-'0')
	}
	if level < 1 || level > MaxLevels {
		return 0
	}
	return level
}

type node struct {
	value    string
	level    int
	parent   int
	children []int
	byValue  map[string]int
}

// Tree is the organization hierarchy as an arena of nodes. Roots are keyed by
// normalized H1 value; children by their trimmed raw value.
type Tree struct {
	nodes    []node
	roots    map[string]int
	accounts map[string]Account
	rows     int
}

// Build constructs a Tree from flat rows. Account keys and normalized display
// names must be unique.
func Build(rows []Row) (*Tree, error) {
	t := &Tree{
		roots:    make(map[string]int),
		accounts: make(map[string]Account, len(rows)),
	}
	owners := make(map[string]string, len(rows))

	for _, r := range rows {
		if _, dup := t.accounts[r.AccountKey]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, r.AccountKey)
		}
		name := Normalize(r.DisplayName)
		if prev, dup := owners[name]; dup && name != "" {
			return nil, fmt.Errorf("%w: %q (accounts %q and %q)", ErrAmbiguousIdentity, name, prev, r.AccountKey)
		}
		owners[name] = r.AccountKey
		t.accounts[r.AccountKey] = Account{
			Key:         r.AccountKey,
			DisplayName: r.DisplayName,
			SecretHash:  r.SecretHash,
		}
		t.insertPath(r.Levels)
		t.rows++
	}
	return t, nil
}

func (t *Tree) insertPath(levels []string) {
	if len(levels) == 0 {
		return
	}
	rootKey := Normalize(levels[0])
	if rootKey == "" {
		return
	}
	cur, ok := t.roots[rootKey]
	if !ok {
		cur = t.addNode(rootKey, 1, -1)
		t.roots[rootKey] = cur
	}

	for i := 1; i < len(levels) && i < MaxLevels; i++ {
		v := strings.TrimSpace(levels[i])
		if v == "" {
			return // branch ends at the first null
		}
		next, ok := t.nodes[cur].byValue[v]
		if !ok {
			next = t.addNode(v, i+1, cur)
		}
		cur = next
	}
}

func (t *Tree) addNode(value string, level, parent int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{value: value, level: level, parent: parent})
	if parent >= 0 {
		p := &t.nodes[parent]
		p.children = append(p.children, idx)
		if p.byValue == nil {
			p.byValue = make(map[string]int)
		}
		p.byValue[value] = idx
	}
	return idx
}

// Account looks up an account by exact, case-sensitive key
func (t *Tree) Account(key string) (Account, bool) {
	a, ok := t.accounts[key]
	return a, ok
}

// Roots returns the normalized root identities in ascending order
func (t *Tree) Roots() []string {
	out := make([]string, 0, len(t.roots))
	for k := range t.roots {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NodeCount returns the number of distinct tree nodes
func (t *Tree) NodeCount() int { return len(t.nodes) }

// RowCount returns the number of rows the tree was built from
func (t *Tree) RowCount() int { return t.rows }
