package hierarchy

import (
	"sort"
	"strings"
)

// NoneValue halts descent when chosen at a level
const NoneValue = "None"

// Selection fixes one level of the path to a concrete value
type Selection struct {
	Level string `json:"level"` // "H2".."H9"
	Value string `json:"value"`
}

// Subtree is the branch of a Tree reached by RootScope and successive Descend
// calls. The zero value is the empty subtree.
type Subtree struct {
	tree *Tree
	node int
	set  bool
}

// RootScope restricts the tree to the branch whose H1 matches identity.
// No match yields an empty subtree, which is a valid outcome.
func RootScope(t *Tree, identity string) Subtree {
	if t == nil {
		return Subtree{}
	}
	idx, ok := t.roots[Normalize(identity)]
	if !ok {
		return Subtree{}
	}
	return Subtree{tree: t, node: idx, set: true}
}

// Empty reports whether the subtree has no rows
func (s Subtree) Empty() bool { return !s.set }

// Depth returns the 1-based level of the subtree root, 0 when empty
func (s Subtree) Depth() int {
	if !s.set {
		return 0
	}
	return s.tree.nodes[s.node].level
}

// NextLevel returns the column name that may be selected next, or "" when the
// maximum depth is reached or the subtree is empty.
func (s Subtree) NextLevel() string {
	d := s.Depth()
	if d == 0 || d >= MaxLevels {
		return ""
	}
	return LevelName(d + 1)
}

// Path returns the selections from H2 down to the subtree root
func (s Subtree) Path() []Selection {
	if !s.set {
		return nil
	}
	var path []Selection
	for cur := s.node; cur >= 0; cur = s.tree.nodes[cur].parent {
		n := s.tree.nodes[cur]
		if n.level < 2 {
			break
		}
		path = append(path, Selection{Level: LevelName(n.level), Value: n.value})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Candidates returns the sorted distinct values available at the next level.
// An empty result means there is nothing more specific to choose.
func (s Subtree) Candidates() []string {
	if !s.set {
		return nil
	}
	n := s.tree.nodes[s.node]
	out := make([]string, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, s.tree.nodes[c].value)
	}
	sort.Strings(out)
	return out
}

// Descend narrows the subtree to the child whose value matches at level.
// Only the level directly below the current depth may be chosen, and value
// must be one of the current candidates; otherwise s is returned unchanged
// with ok == false.
func (s Subtree) Descend(level, value string) (Subtree, bool) {
	if !s.set || value == "" || strings.EqualFold(value, NoneValue) {
		return s, false
	}
	if ParseLevel(level) != s.Depth()+1 {
		return s, false
	}
	child, ok := s.tree.nodes[s.node].byValue[value]
	if !ok {
		return s, false
	}
	return Subtree{tree: s.tree, node: child, set: true}, true
}

// ApplyPath descends through path in order. Descent stops at the first
// selection that is out of order, unknown, or None; that selection and
// everything after it is returned as ignored.
func (s Subtree) ApplyPath(path []Selection) (result Subtree, applied, ignored []Selection) {
	result = s
	for i, sel := range path {
		next, ok := result.Descend(sel.Level, sel.Value)
		if !ok {
			return result, applied, path[i:]
		}
		result = next
		applied = append(applied, sel)
	}
	return result, applied, nil
}

// DescendantIdentities collects every value at level 2 or below within the
// subtree: the selected path values plus all nodes beneath the subtree root.
// The root identity itself is excluded. An empty subtree yields an empty set.
func (s Subtree) DescendantIdentities() IdentitySet {
	set := make(IdentitySet)
	if !s.set {
		return set
	}
	nodes := s.tree.nodes
	for cur := s.node; cur >= 0 && nodes[cur].level >= 2; cur = nodes[cur].parent {
		set.Add(nodes[cur].value)
	}

	stack := append([]int(nil), nodes[s.node].children...)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		set.Add(nodes[idx].value)
		stack = append(stack, nodes[idx].children...)
	}
	return set
}
