package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Add appends the first non-nil result of checks, so each field reports at
// most one violation.
func (e *Errs) Add(checks ...*ErrField) {
	for _, c := range checks {
		if c != nil {
			*e = append(*e, *c)
			return
		}
	}
}

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinLen(field, value string, min int) *ErrField {
	if len([]rune(value)) < min {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	return nil
}

func Username(field, value string) *ErrField {
	if !usernameRe.MatchString(value) {
		return &ErrField{Field: field, Msg: "may only contain letters, digits and underscores"}
	}
	return nil
}

func Email(field, value string) *ErrField {
	if !emailRe.MatchString(strings.TrimSpace(value)) {
		return &ErrField{Field: field, Msg: "must be a valid email address"}
	}
	return nil
}

// Password enforces the password policy as a single rule: min characters
// with at least one lowercase letter, one uppercase letter and one digit.
func Password(field, value string, min int) *ErrField {
	var lower, upper, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len([]rune(value)) < min || !lower || !upper || !digit {
		return &ErrField{
			Field: field,
			Msg:   "must be at least " + strconv.Itoa(min) + " characters and contain a lowercase letter, an uppercase letter and a digit",
		}
	}
	return nil
}
