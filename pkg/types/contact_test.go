package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactFullName(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    string
	}{
		{"both names", Contact{FirstName: "Ada", LastName: "Lovelace"}, "Ada Lovelace"},
		{"first only", Contact{FirstName: "Ada"}, "Ada"},
		{"last only", Contact{LastName: "Lovelace"}, "Lovelace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.contact.FullName())
		})
	}
}

func TestContactInitials(t *testing.T) {
	assert.Equal(t, "AL", Contact{FirstName: "ada", LastName: "lovelace"}.Initials())
	assert.Equal(t, "T", Contact{LastName: "turing"}.Initials())
	assert.Equal(t, "ÉZ", Contact{FirstName: "émile", LastName: "zola"}.Initials())
	assert.Equal(t, "", Contact{}.Initials())
}

func TestContactCloneIsDeep(t *testing.T) {
	orig := Contact{ID: "id-1", FirstName: "Ada", Company: Ptr("Engines")}
	cp := orig.Clone()

	*cp.Company = "Changed"
	require.NotNil(t, orig.Company)
	assert.Equal(t, "Engines", *orig.Company)
	assert.Equal(t, orig.ID, cp.ID)
}

func TestContactMerge(t *testing.T) {
	existing := Contact{
		ID:        "id-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "555-0100",
		Company:   Ptr("Engines"),
		Notes:     Ptr("mathematician"),
		Favorite:  true,
	}

	merged := existing.Merge(Draft{
		ID:       "other",
		Phone:    Ptr("555-0199"),
		Notes:    Ptr(""),
		Favorite: Ptr(false),
	})

	assert.Empty(t, merged.ID, "merge never carries an ID")
	assert.Nil(t, merged.Favorite, "merge never carries a favorite flag")
	assert.Equal(t, "Ada", *merged.FirstName)
	assert.Equal(t, "555-0199", *merged.Phone)
	assert.Equal(t, "Engines", *merged.Company)

	c, err := Validate(merged)
	require.NoError(t, err)
	assert.Nil(t, c.Notes, "empty string clears an optional field")
}

func TestContactDraftRoundTrip(t *testing.T) {
	orig := Contact{ID: "id-1", FirstName: "Alan", LastName: "Turing", Avatar: Ptr("https://example.com/a.png"), Favorite: true}

	c, err := Validate(orig.Draft())
	require.NoError(t, err)
	assert.Equal(t, orig, c)
}

func TestSnapshotClone(t *testing.T) {
	s := Snapshot{Contacts: []Contact{{ID: "a", FirstName: "Ada", Notes: Ptr("x")}}, Ready: true, Version: 3}
	cp := s.Clone()

	cp.Contacts[0].FirstName = "Changed"
	*cp.Contacts[0].Notes = "y"
	assert.Equal(t, "Ada", s.Contacts[0].FirstName)
	assert.Equal(t, "x", *s.Contacts[0].Notes)
	assert.Equal(t, s.Version, cp.Version)
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewID()
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
