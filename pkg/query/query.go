// Package query computes derived views of a contact snapshot: search,
// alphabetical ordering, favorites-first partitioning, grouping and
// spelling suggestions.
//
// Every function is pure. Inputs are never modified and results never
// alias the input slice, so the same snapshot and parameters always yield
// the same output.
package query

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// OtherSection groups contacts whose sort name does not start with a letter.
const OtherSection = "#"

// SearchOption adjusts Search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	company bool
}

// IncludeCompany makes Search also match against the company name.
func IncludeCompany() SearchOption {
	return func(o *searchOptions) { o.company = true }
}

// Search returns the contacts whose "First Last" name contains term,
// ignoring case. A blank term returns every contact in input order.
func Search(contacts []types.Contact, term string, opts ...SearchOption) []types.Contact {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}

	needle := fold(strings.TrimSpace(term))
	if needle == "" {
		return types.CloneContacts(contacts)
	}

	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		if strings.Contains(fold(c.FirstName+" "+c.LastName), needle) ||
			(o.company && c.Company != nil && strings.Contains(fold(*c.Company), needle)) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// SortAlphabetically orders contacts by last name, then first name,
// ignoring case. The sort is stable: contacts with the same names keep
// their input order.
func SortAlphabetically(contacts []types.Contact) []types.Contact {
	out := types.CloneContacts(contacts)
	col := newCollator()
	slices.SortStableFunc(out, func(a, b types.Contact) int {
		if n := col.CompareString(a.LastName, b.LastName); n != 0 {
			return n
		}
		return col.CompareString(a.FirstName, b.FirstName)
	})
	return out
}

// FavoritesFirst moves favorites ahead of everyone else, keeping the
// relative order within each group.
func FavoritesFirst(contacts []types.Contact) []types.Contact {
	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Favorite {
			out = append(out, c.Clone())
		}
	}
	for _, c := range contacts {
		if !c.Favorite {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Section is one letter heading of an alphabetical index.
type Section struct {
	Key      string          `json:"key"`
	Contacts []types.Contact `json:"contacts"`
}

// GroupAlphabetically sorts contacts and splits them into sections keyed
// by the uppercase initial of the last name, or the first name when the
// last name is empty. Contacts are ordered by that same filing name, so a
// first-name-only contact sits among the last names it is filed with.
// Names not starting with a letter go to OtherSection, which always comes
// last.
func GroupAlphabetically(contacts []types.Contact) []Section {
	sorted := types.CloneContacts(contacts)
	col := newCollator()
	slices.SortStableFunc(sorted, func(a, b types.Contact) int {
		if n := col.CompareString(filingName(a), filingName(b)); n != 0 {
			return n
		}
		return col.CompareString(a.FirstName, b.FirstName)
	})

	var (
		sections = []Section{}
		other    []types.Contact
		index    = make(map[string]int)
	)
	for _, c := range sorted {
		key := sectionKey(c)
		if key == OtherSection {
			other = append(other, c)
			continue
		}
		if i, ok := index[key]; ok {
			sections[i].Contacts = append(sections[i].Contacts, c)
			continue
		}
		index[key] = len(sections)
		sections = append(sections, Section{Key: key, Contacts: []types.Contact{c}})
	}
	// Digits and punctuation collate ahead of letters.
	if len(other) > 0 {
		sections = append(sections, Section{Key: OtherSection, Contacts: other})
	}
	return sections
}

// filingName is the name a contact is grouped under.
func filingName(c types.Contact) string {
	if c.LastName != "" {
		return c.LastName
	}
	return c.FirstName
}

func sectionKey(c types.Contact) string {
	r, _ := utf8.DecodeRuneInString(filingName(c))
	if !unicode.IsLetter(r) {
		return OtherSection
	}
	return string(unicode.ToUpper(r))
}

// Suggest ranks contacts whose first, last or full name is within
// maxDistance edits of term, closest first. Ties keep input order. It
// backs "did you mean" hints when Search finds nothing.
func Suggest(contacts []types.Contact, term string, maxDistance int) []types.Contact {
	needle := fold(strings.TrimSpace(term))
	if needle == "" {
		return []types.Contact{}
	}

	type scored struct {
		contact  types.Contact
		distance int
	}
	var hits []scored
	for _, c := range contacts {
		best := -1
		for _, name := range []string{c.FirstName, c.LastName, c.FullName()} {
			if name == "" {
				continue
			}
			d := levenshtein.ComputeDistance(needle, fold(name))
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 && best <= maxDistance {
			hits = append(hits, scored{contact: c.Clone(), distance: best})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int {
		return a.distance - b.distance
	})

	out := make([]types.Contact, len(hits))
	for i, h := range hits {
		out[i] = h.contact
	}
	return out
}

// fold applies Unicode case folding. A fresh Caser per call keeps the
// functions safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(s)
}

// newCollator returns a case-insensitive collator. Collators are not safe
// for concurrent use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}
