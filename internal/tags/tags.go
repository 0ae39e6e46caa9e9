// Package tags models the externally managed string labels attached to
// resources and locations, and the lookups the simulation uses to read them.
package tags

import (
	"sort"
	"strings"
)

// Set is an immutable-by-convention set of tag names.
type Set map[string]struct{}

// NewSet builds a Set from names. Names are trimmed and lower-cased; blanks are dropped.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Normalize returns the canonical spelling of a tag.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[Normalize(name)]
	return ok
}

// HasAny reports whether at least one of names is in the set.
func (s Set) HasAny(names []string) bool {
	for _, n := range names {
		if s.Has(n) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of names is in the set.
func (s Set) HasAll(names []string) bool {
	for _, n := range names {
		if !s.Has(n) {
			return false
		}
	}
	return true
}

// Intersects reports whether the two sets share at least one tag.
func (s Set) Intersects(other Set) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for n := range small {
		if _, ok := big[n]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the tags in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Provider answers "tags of an entity". The simulation never mutates tags.
type Provider interface {
	ResourceTags(resourceID string) Set
	LocationTags(locationID string) Set
}

// Static is a Provider backed by in-memory maps, typically filled from the catalog.
type Static struct {
	Resources map[string]Set
	Locations map[string]Set
}

func (s Static) ResourceTags(resourceID string) Set {
	if t, ok := s.Resources[resourceID]; ok {
		return t
	}
	return Set{}
}

func (s Static) LocationTags(locationID string) Set {
	if t, ok := s.Locations[locationID]; ok {
		return t
	}
	return Set{}
}
