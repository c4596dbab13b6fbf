package rules

import (
	"regexp"
	"strings"
	"unicode"
)

// Default patterns applied when callers do not override them through Options.
const (
	DefaultEmailPattern      = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	DefaultCouponPattern     = `^[A-Z0-9]{6}$`
	DefaultPasswordMinLength = 6
)

// Messages surfaced when a rule rejects a value. They are fixed strings so the
// UI layer can display them verbatim.
const (
	MessageInvalidEmail    = "Please enter a valid email address"
	MessageInvalidPassword = "Password must be at least 6 characters and include a letter and a number"
	MessageInvalidCoupon   = "Coupon codes are 6 uppercase letters or digits"
)

var (
	emailPattern  = regexp.MustCompile(DefaultEmailPattern)
	couponPattern = regexp.MustCompile(DefaultCouponPattern)
)

// IsValidEmail reports whether s looks like an email address. The check is a
// shape test only; it makes no attempt at full RFC compliance.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPassword reports whether s is at least six characters long and
// contains at least one letter and one digit.
func IsValidPassword(s string) bool {
	return validPassword(s, DefaultPasswordMinLength)
}

// IsValidCoupon reports whether s is exactly six characters, all uppercase
// letters or digits.
func IsValidCoupon(s string) bool {
	return couponPattern.MatchString(s)
}

func validPassword(s string, minLength int) bool {
	if len(s) < minLength {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Rule couples a predicate with the message reported when it fails. Rules are
// pure; they never touch UI state.
type Rule struct {
	Name    string
	Message string
	Check   func(string) bool
}

// Validate runs the rule against value and returns the failure message, or ""
// when the value passes. Predicates are only meaningful for present values;
// callers decide how to treat missing fields.
func (r Rule) Validate(value string) string {
	if r.Check == nil {
		return ""
	}
	if r.Check(value) {
		return ""
	}
	return r.Message
}

// Options configure pattern overrides for a rule set. Zero values fall back to
// the package defaults.
type Options struct {
	EmailPattern      string
	CouponPattern     string
	PasswordMinLength int
}

// Compile builds the three canonical rules from the options. Invalid override
// patterns surface as errors instead of panicking at match time.
func Compile(opts Options) (email, password, coupon Rule, err error) {
	emailRe := emailPattern
	if pattern := strings.TrimSpace(opts.EmailPattern); pattern != "" {
		emailRe, err = regexp.Compile(pattern)
		if err != nil {
			return Rule{}, Rule{}, Rule{}, err
		}
	}
	couponRe := couponPattern
	if pattern := strings.TrimSpace(opts.CouponPattern); pattern != "" {
		couponRe, err = regexp.Compile(pattern)
		if err != nil {
			return Rule{}, Rule{}, Rule{}, err
		}
	}
	minLength := opts.PasswordMinLength
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}

	email = Rule{
		Name:    RuleEmail,
		Message: MessageInvalidEmail,
		Check:   emailRe.MatchString,
	}
	password = Rule{
		Name:    RulePassword,
		Message: MessageInvalidPassword,
		Check:   func(s string) bool { return validPassword(s, minLength) },
	}
	coupon = Rule{
		Name:    RuleCoupon,
		Message: MessageInvalidCoupon,
		Check:   couponRe.MatchString,
	}
	return email, password, coupon, nil
}
