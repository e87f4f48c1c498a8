package domain

import "strings"

// SortOrder controls how place lists are ordered in the UI.
type SortOrder string

const (
	SortOrderDistance SortOrder = "distance"
	SortOrderName     SortOrder = "name"
	SortOrderRecent   SortOrder = "recent"
)

// DefaultSortOrder is used when no sort order has been stored or the stored
// value is not recognized.
const DefaultSortOrder = SortOrderDistance

// ParseSortOrder maps a stored string onto a SortOrder, falling back to the
// default for unknown values rather than failing.
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case SortOrderDistance:
		return SortOrderDistance
	case SortOrderName:
		return SortOrderName
	case SortOrderRecent:
		return SortOrderRecent
	default:
		return DefaultSortOrder
	}
}

// CategorySet is an unordered set of category names.
type CategorySet map[string]struct{}

func NewCategorySet(names ...string) CategorySet {
	s := make(CategorySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s CategorySet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

func (s CategorySet) Add(name string)    { s[name] = struct{}{} }
func (s CategorySet) Remove(name string) { delete(s, name) }
