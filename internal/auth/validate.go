package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"unicode"
)

var (
	// ErrInvalidEmail indicates the email failed shape validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword indicates the password failed the strength policy.
	ErrWeakPassword = errors.New("password does not meet strength requirements")
)

// Rule pairs a predicate with the error reported when it fails. Rules are
// evaluated in order and the first failure wins.
type Rule struct {
	Name  string
	Check func(string) bool
	Err   error
}

// Evaluate runs the rules against the value and returns the first failure.
func Evaluate(value string, rules []Rule) error {
	for _, rule := range rules {
		if !rule.Check(value) {
			return rule.Err
		}
	}
	return nil
}

// EmailRules returns the validation ruleset for registration emails.
func EmailRules() []Rule {
	return []Rule{
		{
			Name:  "present",
			Check: func(v string) bool { return v != "" },
			Err:   fmt.Errorf("%w: email is required", ErrInvalidEmail),
		},
		{
			Name:  "length",
			Check: func(v string) bool { return len(v) <= 255 },
			Err:   fmt.Errorf("%w: email exceeds 255 characters", ErrInvalidEmail),
		},
		{
			Name: "shape",
			Check: func(v string) bool {
				addr, err := mail.ParseAddress(v)
				return err == nil && addr.Address == v
			},
			Err: ErrInvalidEmail,
		},
	}
}

// PasswordRules returns the strength policy: minimum length plus at least one
// uppercase letter, one lowercase letter, and one digit.
func PasswordRules(minLen int) []Rule {
	return []Rule{
		{
			Name:  "length",
			Check: func(v string) bool { return len(v) >= minLen },
			Err:   fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, minLen),
		},
		{
			Name:  "uppercase",
			Check: containsClass(unicode.IsUpper),
			Err:   fmt.Errorf("%w: must contain an uppercase letter", ErrWeakPassword),
		},
		{
			Name:  "lowercase",
			Check: containsClass(unicode.IsLower),
			Err:   fmt.Errorf("%w: must contain a lowercase letter", ErrWeakPassword),
		},
		{
			Name:  "digit",
			Check: containsClass(unicode.IsDigit),
			Err:   fmt.Errorf("%w: must contain a digit", ErrWeakPassword),
		},
	}
}

func containsClass(class func(rune) bool) func(string) bool {
	return func(v string) bool {
		for _, r := range v {
			if class(r) {
				return true
			}
		}
		return false
	}
}
