package utils

import (
	"strconv"
	"strings"
)

// ObfuscateID masks an account ID for public announcements.
// Long IDs keep their first two and last three digits; IDs of five digits
// or fewer keep only the last three characters.
func ObfuscateID(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) <= 5 {
		if len(s) <= 3 {
			return s
		}
		return strings.Repeat("*", len(s)-3) + s[len(s)-3:]
	}
	return s[:2] + "***" + s[len(s)-3:]
}

// FormatAmount groups digits in thousands with a dot separator (e.g. 1.250.000)
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
