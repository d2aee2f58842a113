// Package normalizers provides field normalization functions for card matching
package normalizers

import (
	"strings"
	"unicode"
)

// PhoneDigits is the number of trailing digits kept from a phone number, so
// numbers recorded with and without a country code compare equal.
const PhoneDigits = 10

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// ApplyAll normalizes every entry of a list with fn, dropping entries that
// normalize to the empty string. Order is preserved.
func ApplyAll(values []string, fn Normalizer) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if n := fn(v); n != "" {
			result = append(result, n)
		}
	}
	return result
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// NormalizeName lowercases and trims a person's name or job title
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail normalizes an email address (lowercase, trim)
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeWebsite normalizes a website (lowercase, trim)
func NormalizeWebsite(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone keeps only digits and truncates to the last PhoneDigits digits.
// "+91 98765 43210" and "9876543210" both become "9876543210".
func NormalizePhone(s string) string {
	digits := DigitsOnly(s)
	if len(digits) > PhoneDigits {
		return digits[len(digits)-PhoneDigits:]
	}
	return digits
}

// NormalizeCompany lowercases a company name and strips everything outside
// [a-z0-9], so "Acme, Inc." and "ACME INC" normalize identically.
func NormalizeCompany(s string) string {
	s = strings.ToLower(s)
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
