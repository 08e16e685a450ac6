package cities

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultNames is the built-in city list used when no list is configured.
var DefaultNames = []string{
	"Mumbai",
	"Delhi",
	"Bengaluru",
	"Hyderabad",
	"Ahmedabad",
	"Chennai",
	"Kolkata",
	"Pune",
	"Jaipur",
	"Surat",
	"Lucknow",
	"Kanpur",
}

// Set answers membership questions about a city list. Lookups are case
// folded and NFC normalized, so select values don't have to match the
// reference data byte for byte.
type Set struct {
	names []string
	index map[string]struct{}
}

func normalizeName(name string) string {
	folded := cases.Fold().String(strings.TrimSpace(name))
	return norm.NFC.String(folded)
}

func NewSet(names ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		if _, ok := s.index[key]; ok {
			continue
		}
		s.index[key] = struct{}{}
		s.names = append(s.names, name)
	}
	return s
}

func (s *Set) Contains(name string) bool {
	_, ok := s.index[normalizeName(name)]
	return ok
}

// Names returns the list in configuration order.
func (s *Set) Names() []string {
	return slices.Clone(s.names)
}

func (s *Set) Len() int {
	return len(s.index)
}
