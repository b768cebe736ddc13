// Package seed provides the built-in demo contacts and the volatile memory
// backend.
package seed

import (
	"context"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// demoContacts are installed by "rolodex init --demo" and by a fresh memory
// backend.
var demoContacts = []types.Contact{
	{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+44 20 7946 0018",
		Email:     "ada@analytical.engine",
		Company:   types.Ptr("Analytical Engine"),
		Birthday:  types.Ptr("1815-12-10"),
		Notes:     types.Ptr("Wrote the first published algorithm."),
	},
	{
		FirstName: "Alan",
		LastName:  "Turing",
		Phone:     "+44 161 496 0000",
		Email:     "alan@bletchley.park",
		Company:   types.Ptr("Bletchley Park"),
		Birthday:  types.Ptr("1912-06-23"),
	},
	{
		FirstName: "Grace",
		LastName:  "Hopper",
		Phone:     "(202) 555-0143",
		Email:     "grace@navy.mil",
		Company:   types.Ptr("US Navy"),
		Notes:     types.Ptr("Found the first actual bug."),
	},
	{
		FirstName: "Katherine",
		LastName:  "Johnson",
		Phone:     "757-555-0199",
		Email:     "katherine@nasa.gov",
		Company:   types.Ptr("NASA Langley"),
	},
	{
		FirstName: "Linus",
		LastName:  "Torvalds",
		Email:     "linus@kernel.org",
		Address:   types.Ptr("Portland, Oregon"),
	},
}

// Demo returns fresh drafts for the demo contacts. They carry no IDs, so
// the store assigns new ones.
func Demo() []types.Draft {
	out := make([]types.Draft, len(demoContacts))
	for i, c := range demoContacts {
		d := c.Draft()
		d.ID = ""
		d.Favorite = nil
		out[i] = d
	}
	return out
}

// Static is a DataSource that always returns the same drafts.
type Static []types.Draft

// LoadInitial returns a copy of the drafts.
func (s Static) LoadInitial(ctx context.Context) ([]types.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.Draft, len(s))
	copy(out, s)
	return out, nil
}
