package types

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// NewID returns a fresh contact ID, a UUID v7 with a v4 fallback.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Contact is a single address-book entry. Optional fields are nil when
// absent; an empty string is never stored in them.
type Contact struct {
	ID        string  `json:"id"`         // UUID v7, generated on creation.
	FirstName string  `json:"first_name"` // Never empty together with LastName.
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Company   *string `json:"company,omitempty"`
	Address   *string `json:"address,omitempty"`
	Birthday  *string `json:"birthday,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Avatar    *string `json:"avatar,omitempty"` // Image URI.
	Favorite  bool    `json:"favorite"`
}

// Draft is an unvalidated set of contact fields. A nil field was not
// supplied by the caller.
//
// ID and Favorite are only honored when a data source restores records
// during store initialization; Add and Update ignore them.
type Draft struct {
	ID        string  `json:"id,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Company   *string `json:"company,omitempty"`
	Address   *string `json:"address,omitempty"`
	Birthday  *string `json:"birthday,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	Favorite  *bool   `json:"favorite,omitempty"`
}

// Ptr returns a pointer to v. Handy for building drafts.
func Ptr[T any](v T) *T {
	return &v
}

// Clone returns a deep copy of c that shares no memory with it.
func (c Contact) Clone() Contact {
	out := c
	out.Company = clonePtr(c.Company)
	out.Address = clonePtr(c.Address)
	out.Birthday = clonePtr(c.Birthday)
	out.Notes = clonePtr(c.Notes)
	out.Avatar = clonePtr(c.Avatar)
	return out
}

// FullName joins the first and last name with a single space, skipping
// whichever is empty.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Initials returns the uppercase first letter of each present name, e.g.
// "AL" for Ada Lovelace.
func (c Contact) Initials() string {
	var b strings.Builder
	for _, name := range []string{c.FirstName, c.LastName} {
		r, size := utf8.DecodeRuneInString(name)
		if size == 0 || r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Draft converts c back into a draft carrying every field, including ID
// and Favorite. Data sources use it to restore persisted records.
func (c Contact) Draft() Draft {
	return Draft{
		ID:        c.ID,
		FirstName: Ptr(c.FirstName),
		LastName:  Ptr(c.LastName),
		Phone:     Ptr(c.Phone),
		Email:     Ptr(c.Email),
		Company:   clonePtr(c.Company),
		Address:   clonePtr(c.Address),
		Birthday:  clonePtr(c.Birthday),
		Notes:     clonePtr(c.Notes),
		Avatar:    clonePtr(c.Avatar),
		Favorite:  Ptr(c.Favorite),
	}
}

// Merge overlays the supplied fields of d onto c and returns the result as
// a draft. Fields d leaves nil keep the value from c. A supplied empty
// string clears an optional field once validated.
func (c Contact) Merge(d Draft) Draft {
	merged := c.Draft()
	merged.ID = ""
	merged.Favorite = nil
	overlay(&merged.FirstName, d.FirstName)
	overlay(&merged.LastName, d.LastName)
	overlay(&merged.Phone, d.Phone)
	overlay(&merged.Email, d.Email)
	overlay(&merged.Company, d.Company)
	overlay(&merged.Address, d.Address)
	overlay(&merged.Birthday, d.Birthday)
	overlay(&merged.Notes, d.Notes)
	overlay(&merged.Avatar, d.Avatar)
	return merged
}

// CloneContacts deep-copies a slice of contacts. The result is never nil.
func CloneContacts(cs []Contact) []Contact {
	out := make([]Contact, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

func overlay(dst **string, src *string) {
	if src != nil {
		*dst = clonePtr(src)
	}
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
