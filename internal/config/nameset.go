package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// NameSet is an immutable set of base names.
// The zero value is an empty set.
type NameSet struct {
	names map[string]struct{}
}

// NewNameSet builds a set from names, dropping empty strings and duplicates.
func NewNameSet(names ...string) NameSet {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		m[n] = struct{}{}
	}
	return NameSet{names: m}
}

// Has reports whether name is a member. Matching is exact and case-sensitive.
func (s NameSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s NameSet) Len() int {
	return len(s.names)
}

// Names returns the members in sorted order.
func (s NameSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Union returns a new set holding the members of both sets.
func (s NameSet) Union(other NameSet) NameSet {
	return NewNameSet(append(s.Names(), other.Names()...)...)
}

func (s NameSet) String() string {
	return fmt.Sprintf("%v", s.Names())
}

// UnmarshalYAML accepts a sequence of names or a single scalar name.
func (s *NameSet) UnmarshalYAML(value *yaml.Node) error {
	var names []string
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		names = []string{one}
	case yaml.SequenceNode:
		if err := value.Decode(&names); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: expected a name or a list of names", value.Line)
	}
	*s = NewNameSet(names...)
	return nil
}

// MarshalYAML writes the set as a sorted sequence.
func (s NameSet) MarshalYAML() (interface{}, error) {
	return s.Names(), nil
}
