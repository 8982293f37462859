package hierarchy

import (
	"sort"
	"strings"
)

// Normalize trims surrounding whitespace and lowercases s. It is the matching
// key for identities everywhere in the hierarchy and activity data.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IdentitySet is a set of normalized names
type IdentitySet map[string]struct{}

// NewIdentitySet normalizes names into a set, skipping blanks
func NewIdentitySet(names ...string) IdentitySet {
	set := make(IdentitySet, len(names))
	for _, n := range names {
		set.Add(n)
	}
	return set
}

// Add normalizes name and adds it. Blank names are ignored.
func (s IdentitySet) Add(name string) {
	n := Normalize(name)
	if n == "" {
		return
	}
	s[n] = struct{}{}
}

// Has reports whether the already-normalized name is a member
func (s IdentitySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of members
func (s IdentitySet) Len() int { return len(s) }

// Sorted returns members in ascending order (for deterministic output)
func (s IdentitySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SubsetOf reports whether every member of s is in other
func (s IdentitySet) SubsetOf(other IdentitySet) bool {
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}
