package validator

import (
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"
)

func Required(field, value string) Rule {
	return newRule(field, func() bool {
		return strings.TrimSpace(value) != ""
	}, "is required")
}

func MinLen(field, value string, n int) Rule {
	return newRule(field, func() bool {
		return utf8.RuneCountInString(value) >= n
	}, "must be at least %d characters long", n)
}

func MaxLen(field, value string, n int) Rule {
	return newRule(field, func() bool {
		return utf8.RuneCountInString(value) <= n
	}, "must be at most %d characters long", n)
}

// Email accepts a bare address without display name.
func Email(field, value string) Rule {
	return newRule(field, func() bool {
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value
	}, "must be a valid email address")
}

// OneOf accepts values listed in options.
func OneOf[T comparable](field string, value T, options ...T) Rule {
	return newRule(field, func() bool {
		return slices.Contains(options, value)
	}, "must be one of %v", options)
}

// Between accepts values in [lo, hi].
func Between[T Numeric](field string, value, lo, hi T) Rule {
	return newRule(field, func() bool {
		return value >= lo && value <= hi
	}, "must be between %v and %v", lo, hi)
}

// AnyOf passes when at least one of values is non-blank.
func AnyOf(field string, values ...string) Rule {
	return newRule(field, func() bool {
		return slices.ContainsFunc(values, func(v string) bool {
			return strings.TrimSpace(v) != ""
		})
	}, "at least one value is required")
}

// NumericString accepts an empty string or a string of ASCII digits.
func NumericString(field, value string) Rule {
	return newRule(field, func() bool {
		for i := 0; i < len(value); i++ {
			if value[i] < '0' || value[i] > '9' {
				return false
			}
		}
		return true
	}, "must contain digits only")
}
