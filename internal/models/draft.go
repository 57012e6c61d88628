package models

import (
	"strings"
	"unicode"

	"github.com/dmitrijs2005/signout/internal/common"
)

// MaxDestinationLength is the longest destination accepted.
const MaxDestinationLength = 100

// Draft is the operator input for a new or edited sign-out.
type Draft struct {
	Soldiers    []string
	Destination string
	Phone       string
	Categories  []string
	Notes       string
}

// ValidationError lists every problem found in a draft.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid sign-out: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return common.ErrorValidation
}

// Normalize trims every field, drops blank soldiers and categories and
// formats the phone number.
func (d Draft) Normalize() Draft {
	return Draft{
		Soldiers:    trimAll(d.Soldiers),
		Destination: strings.TrimSpace(d.Destination),
		Phone:       FormatPhone(strings.TrimSpace(d.Phone)),
		Categories:  trimAll(d.Categories),
		Notes:       strings.TrimSpace(d.Notes),
	}
}

// Validate returns a *ValidationError when the draft cannot be stored.
func (d Draft) Validate() error {
	var problems []string

	if len(trimAll(d.Soldiers)) == 0 {
		problems = append(problems, "At least one soldier must be selected")
	}

	dest := strings.TrimSpace(d.Destination)
	switch {
	case dest == "":
		problems = append(problems, "Destination is required")
	case len([]rune(dest)) > MaxDestinationLength:
		problems = append(problems, "Destination must be 100 characters or less")
	}

	phone := strings.TrimSpace(d.Phone)
	switch {
	case phone == "":
		problems = append(problems, "Phone number is required")
	case !IsValidPhone(phone):
		problems = append(problems, "Invalid phone number format")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// FormatPhone renders 10 digits, or 11 digits with a leading 1, as
// "(XXX) XXX-XXXX". Anything else is returned unchanged.
func FormatPhone(phone string) string {
	d := digits(phone)
	switch {
	case len(d) == 10:
	case len(d) == 11 && d[0] == '1':
		d = d[1:]
	default:
		return phone
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// IsValidPhone reports whether phone holds a US number: 10 digits, or 11
// starting with 1. Separators are ignored.
func IsValidPhone(phone string) bool {
	d := digits(phone)
	return len(d) == 10 || (len(d) == 11 && d[0] == '1')
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimFunc(s, unicode.IsSpace)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitList parses a comma separated operator answer into trimmed items.
func SplitList(s string) []string {
	return trimAll(strings.Split(s, ","))
}
