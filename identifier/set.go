package identifier

import "sort"

// Set is a set of identifiers with deterministic iteration order.
type Set map[Identifier]struct{}

// NewSet creates a set holding ids.
func NewSet(ids ...Identifier) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id.
func (s Set) Add(id Identifier) {
	s[id] = struct{}{}
}

// Contains reports whether id is in the set.
func (s Set) Contains(id Identifier) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members ordered by string form.
func (s Set) Sorted() []Identifier {
	out := make([]Identifier, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	Sort(out)
	return out
}

// Sort orders ids in place by string form.
func Sort(ids []Identifier) {
	sort.Slice(ids, func(i, j int) bool { return Less(ids[i], ids[j]) })
}
