package types

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names reported in a ValidationError.
const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldEmail = "email"
)

// minPhoneDigits is the fewest digits a phone number may carry.
const minPhoneDigits = 3

// contactRules carries the format-checked fields through the validator.
type contactRules struct {
	Phone string `json:"phone" validate:"omitempty,phone"`
	Email string `json:"email" validate:"omitempty,email"`
}

var rules = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("phone", isPhone); err != nil {
		panic(err)
	}
	return v
}

// isPhone accepts digits with an optional leading '+' and the usual
// separators. It blocks obviously malformed input, nothing more.
func isPhone(fl validator.FieldLevel) bool {
	return PlausiblePhone(fl.Field().String())
}

// PlausiblePhone reports whether s looks like a phone number: at least
// three digits, an optional leading '+', and only spaces, dots, dashes and
// parentheses as separators.
func PlausiblePhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

// Validate normalizes a draft into a Contact. String fields are trimmed,
// optional fields that trim to empty become nil, and Favorite defaults to
// false. It returns a *ValidationError when the first and last name are
// both empty or when a present phone or email is malformed.
//
// Validate has no side effects; ID is copied from the draft unchanged so
// callers decide whether to honor it.
func Validate(d Draft) (Contact, error) {
	c := Contact{
		ID:        strings.TrimSpace(d.ID),
		FirstName: trimmed(d.FirstName),
		LastName:  trimmed(d.LastName),
		Phone:     trimmed(d.Phone),
		Email:     trimmed(d.Email),
		Company:   trimmedOptional(d.Company),
		Address:   trimmedOptional(d.Address),
		Birthday:  trimmedOptional(d.Birthday),
		Notes:     trimmedOptional(d.Notes),
		Avatar:    trimmedOptional(d.Avatar),
		Favorite:  d.Favorite != nil && *d.Favorite,
	}

	var problems []FieldError
	if c.FirstName == "" && c.LastName == "" {
		problems = append(problems, FieldError{Field: FieldName, Reason: "first and last name are both empty"})
	}

	err := rules.Struct(contactRules{Phone: c.Phone, Email: c.Email})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			problems = append(problems, FieldError{Field: fe.Field(), Reason: reasonFor(fe)})
		}
	} else if err != nil {
		return Contact{}, err
	}

	if len(problems) > 0 {
		return Contact{}, &ValidationError{Fields: problems}
	}
	return c, nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "email":
		return "not a valid email address"
	case "phone":
		return "not a valid phone number"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func trimmedOptional(p *string) *string {
	s := trimmed(p)
	if s == "" {
		return nil
	}
	return &s
}
