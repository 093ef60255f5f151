package catalog

import "sort"

// FavoriteSet is the set of report ids a user has starred.
type FavoriteSet map[string]struct{}

// NewFavoriteSet builds a set from ids, ignoring blanks.
func NewFavoriteSet(ids ...string) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a favorite.
func (s FavoriteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle inserts id when absent and removes it when present. It returns the
// new membership of id.
func (s FavoriteSet) Toggle(id string) bool {
	if _, ok := s[id]; ok {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

// Len returns the raw number of ids, including ids no longer in any catalog.
func (s FavoriteSet) Len() int { return len(s) }

// IDs returns the ids in lexical order.
func (s FavoriteSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s FavoriteSet) Clone() FavoriteSet {
	out := make(FavoriteSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same ids.
func (s FavoriteSet) Equal(other FavoriteSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
