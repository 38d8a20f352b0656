package auth

import "sort"

// Set is a set of granted catalog permissions.
type Set map[Permission]struct{}

// NewSet builds a Set from identifiers. Identifiers missing from the
// catalog are ignored.
func NewSet(names ...string) Set {
	s := make(Set, len(names))

	for _, n := range names {
		if d, ok := Lookup(n); ok {
			s[d.Permission] = struct{}{}
		}
	}

	return s
}

// Has reports whether p was granted exactly.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Names returns the sorted identifiers in the set.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, p.String())
	}

	sort.Strings(names)

	return names
}

// Union returns a new set holding the permissions of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for p := range s {
		out[p] = struct{}{}
	}

	for p := range other {
		out[p] = struct{}{}
	}

	return out
}

// Satisfies reports whether granted fulfils the required identifier.
//
// An exact grant satisfies the requirement, and so does the manage
// permission of the same resource. No other implication exists: edit does
// not imply view. A required identifier that is empty or not in the catalog
// is never satisfied.
func Satisfies(granted Set, required string) bool {
	d, ok := Lookup(required)
	if !ok {
		return false
	}

	if granted.Has(d.Permission) {
		return true
	}

	return granted.Has(d.ManageOf())
}
