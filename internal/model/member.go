package model

import "strings"

// Member is a community participant eligible to book the suite.  ID is
// always exactly three ASCII digits (zero padded).
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NormalizeMemberID strips everything but digits and left pads the result
// to three digits.  ok is false when the input holds no digits or more than
// three of them.
func NormalizeMemberID(raw string) (id string, ok bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || len(digits) > 3 {
		return "", false
	}
	return strings.Repeat("0", 3-len(digits)) + digits, true
}
