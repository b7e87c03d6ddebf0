// Package objects defines the normalized set of object names the
// perception service reports for a single frame.
package objects

import "strings"

// Set is a deduplicated list of normalized object names.
//
// Names keep the order in which they were first added so that truncation
// (see First) is reproducible for identical input. Equality between two
// sets ignores that order.
type Set struct {
	names []string
}

// Normalize lower-cases and trims an object name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// New builds a Set from the given names, normalizing each one and dropping
// empty names and duplicates.
func New(names ...string) Set {
	var s Set
	for _, n := range names {
		s = s.Add(n)
	}
	return s
}

// Add returns a copy of s with name appended if it is not already present.
func (s Set) Add(name string) Set {
	name = Normalize(name)
	if name == "" || s.Contains(name) {
		return s
	}
	names := make([]string, len(s.names), len(s.names)+1)
	copy(names, s.names)
	return Set{names: append(names, name)}
}

// Contains reports whether name (after normalization) is in the set.
func (s Set) Contains(name string) bool {
	name = Normalize(name)
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Len returns the number of names in the set.
func (s Set) Len() int { return len(s.names) }

// Empty reports whether the set has no names.
func (s Set) Empty() bool { return len(s.names) == 0 }

// Names returns a copy of the names in insertion order.
func (s Set) Names() []string {
	return append([]string(nil), s.names...)
}

// First returns at most n names in insertion order.
func (s Set) First(n int) []string {
	if n < 0 || n >= len(s.names) {
		return s.Names()
	}
	return append([]string(nil), s.names[:n]...)
}

// SymmetricDifference returns the names present in exactly one of s and o.
func (s Set) SymmetricDifference(o Set) []string {
	var diff []string
	for _, n := range s.names {
		if !o.Contains(n) {
			diff = append(diff, n)
		}
	}
	for _, n := range o.names {
		if !s.Contains(n) {
			diff = append(diff, n)
		}
	}
	return diff
}

// Equal reports set equality: the symmetric difference is empty.
func (s Set) Equal(o Set) bool {
	return len(s.SymmetricDifference(o)) == 0
}

// String joins the names with ", ", the format the dialogue service expects.
func (s Set) String() string {
	return strings.Join(s.names, ", ")
}
