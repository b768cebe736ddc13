package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		draft      Draft
		wantFields []string
		check      func(t *testing.T, c Contact)
	}{
		{
			name:  "first name only is valid",
			draft: Draft{FirstName: Ptr("Ada")},
			check: func(t *testing.T, c Contact) {
				assert.Equal(t, "Ada", c.FirstName)
				assert.Equal(t, "", c.LastName)
			},
		},
		{
			name:  "last name only is valid",
			draft: Draft{LastName: Ptr("Turing")},
		},
		{
			name:       "both names empty rejected",
			draft:      Draft{FirstName: Ptr(""), LastName: Ptr("")},
			wantFields: []string{FieldName},
		},
		{
			name:       "nil names rejected",
			draft:      Draft{Phone: Ptr("555-0100")},
			wantFields: []string{FieldName},
		},
		{
			name:       "whitespace names rejected",
			draft:      Draft{FirstName: Ptr("   "), LastName: Ptr("\t")},
			wantFields: []string{FieldName},
		},
		{
			name:  "string fields trimmed",
			draft: Draft{FirstName: Ptr("  Ada "), LastName: Ptr(" Lovelace"), Email: Ptr(" ada@example.com ")},
			check: func(t *testing.T, c Contact) {
				assert.Equal(t, "Ada", c.FirstName)
				assert.Equal(t, "Lovelace", c.LastName)
				assert.Equal(t, "ada@example.com", c.Email)
			},
		},
		{
			name:  "blank optional fields become nil",
			draft: Draft{FirstName: Ptr("Ada"), Company: Ptr("  "), Notes: Ptr("")},
			check: func(t *testing.T, c Contact) {
				assert.Nil(t, c.Company)
				assert.Nil(t, c.Notes)
			},
		},
		{
			name:  "optional fields kept and trimmed",
			draft: Draft{FirstName: Ptr("Ada"), Company: Ptr(" Analytical Engines "), Birthday: Ptr("1815-12-10")},
			check: func(t *testing.T, c Contact) {
				require.NotNil(t, c.Company)
				assert.Equal(t, "Analytical Engines", *c.Company)
				require.NotNil(t, c.Birthday)
				assert.Equal(t, "1815-12-10", *c.Birthday)
			},
		},
		{
			name:  "favorite defaults to false",
			draft: Draft{FirstName: Ptr("Ada")},
			check: func(t *testing.T, c Contact) {
				assert.False(t, c.Favorite)
			},
		},
		{
			name:  "favorite carried when supplied",
			draft: Draft{FirstName: Ptr("Ada"), Favorite: Ptr(true)},
			check: func(t *testing.T, c Contact) {
				assert.True(t, c.Favorite)
			},
		},
		{
			name:  "formatted phone accepted",
			draft: Draft{FirstName: Ptr("Ada"), Phone: Ptr("+1 (555) 010-0199")},
		},
		{
			name:       "phone with letters rejected",
			draft:      Draft{FirstName: Ptr("Ada"), Phone: Ptr("call me")},
			wantFields: []string{FieldPhone},
		},
		{
			name:       "phone too short rejected",
			draft:      Draft{FirstName: Ptr("Ada"), Phone: Ptr("12")},
			wantFields: []string{FieldPhone},
		},
		{
			name:       "malformed email rejected",
			draft:      Draft{FirstName: Ptr("Ada"), Email: Ptr("not-an-email")},
			wantFields: []string{FieldEmail},
		},
		{
			name:       "every problem reported",
			draft:      Draft{Phone: Ptr("x"), Email: Ptr("nope")},
			wantFields: []string{FieldName, FieldPhone, FieldEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Validate(tt.draft)
			if len(tt.wantFields) > 0 {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Len(t, verr.Fields, len(tt.wantFields))
				for _, f := range tt.wantFields {
					assert.True(t, verr.Has(f), "expected %s to be rejected", f)
				}
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestValidateDoesNotTouchDraft(t *testing.T) {
	first := "  Ada  "
	d := Draft{FirstName: &first}

	_, err := Validate(d)
	require.NoError(t, err)
	assert.Equal(t, "  Ada  ", first)
}

func TestPlausiblePhone(t *testing.T) {
	assert.True(t, PlausiblePhone("555"))
	assert.True(t, PlausiblePhone("+44 20 7946 0958"))
	assert.True(t, PlausiblePhone("555.010.0199"))
	assert.False(t, PlausiblePhone("5+55"))
	assert.False(t, PlausiblePhone(""))
	assert.False(t, PlausiblePhone("ext 12"))
}
