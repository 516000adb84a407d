package model

import (
	"strings"

	"restaurant-offer-service/internal/domain"
)

// ValidatePhone checks that raw is a plausible Swedish mobile number in the
// domestic format: leading 0, non-zero second digit, 10-11 digits total.
// Obviously fake patterns (long repeats, sequences, low digit variety) are
// rejected so the contact list stays usable. Pure function.
func ValidatePhone(raw string) error {
	cleaned := stripSeparators(raw)
	if !isDigits(cleaned) {
		return domain.ErrPhoneFormat
	}
	if len(cleaned) < 10 || len(cleaned) > 11 {
		return domain.ErrPhoneFormat
	}
	if cleaned[0] != '0' || cleaned[1] == '0' {
		return domain.ErrPhoneFormat
	}
	if longestRun(cleaned) > 7 {
		return domain.ErrPhoneRepeated
	}
	if hasSequence(cleaned, 9) {
		return domain.ErrPhoneSequential
	}
	// Past the 3-digit prefix, a tail of 7+ digits drawn from 2 or fewer
	// distinct values is spam (070111111 and friends).
	tail := cleaned[3:]
	if len(tail) >= 7 && distinctDigits(tail) <= 2 {
		return domain.ErrPhoneLowVariety
	}
	return nil
}

// NormalizePhone rewrites the +46 / 0046 international prefixes to the
// domestic 0-leading form and strips separators. It does not validate.
func NormalizePhone(raw string) string {
	cleaned := stripSeparators(raw)
	switch {
	case strings.HasPrefix(cleaned, "+46"):
		return "0" + cleaned[3:]
	case strings.HasPrefix(cleaned, "0046"):
		return "0" + cleaned[4:]
	}
	return cleaned
}

func stripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '-':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func longestRun(s string) int {
	best, run := 0, 0
	var prev byte
	for i := 0; i < len(s); i++ {
		if i > 0 && s[i] == prev {
			run++
		} else {
			run = 1
			prev = s[i]
		}
		if run > best {
			best = run
		}
	}
	return best
}

// hasSequence reports whether s contains n or more consecutive digits that
// ascend or descend by exactly one (e.g. 123456789 or 987654321). Shorter
// runs are allowed: 0701234567 contains the 8-digit run 01234567 and is a
// perfectly plausible number.
func hasSequence(s string, n int) bool {
	asc, desc := 1, 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1]+1 {
			asc++
		} else {
			asc = 1
		}
		if s[i] == s[i-1]-1 {
			desc++
		} else {
			desc = 1
		}
		if asc >= n || desc >= n {
			return true
		}
	}
	return false
}

func distinctDigits(s string) int {
	var seen [10]bool
	count := 0
	for i := 0; i < len(s); i++ {
		d := s[i] - '0'
		if !seen[d] {
			seen[d] = true
			count++
		}
	}
	return count
}
