// Package phone extracts phone-number-like substrings from free text and
// normalizes them to a canonical international form.
package phone

import (
	"regexp"
	"strings"
)

// pattern matches runs of at least 9 characters drawn from digits, spaces,
// hyphens, and parentheses, optionally prefixed with +, starting and ending
// on a digit. Long digit runs inside non-phone text (order numbers and the
// like) also match; that over-capture is accepted heuristic behavior.
var pattern = regexp.MustCompile(`\+?[0-9][0-9\s()-]{7,}[0-9]`)

// Match is one recognized phone occurrence: the substring as typed and its
// canonical form.
type Match struct {
	Original   string
	Normalized string
}

// Normalize converts raw to the canonical +-prefixed digit form used as the
// dedup key. It applies Russian domestic-to-international conventions: a
// leading 8 or 7 and bare ten-digit numbers all collapse to +7. Anything
// else is returned stripped but otherwise unchanged, so distinct raw forms
// of the same number share one key. Normalize is idempotent.
func Normalize(raw string) string {
	stripped := strip(raw)
	switch {
	case stripped == "":
		return ""
	case strings.HasPrefix(stripped, "8"):
		return "+7" + stripped[1:]
	case strings.HasPrefix(stripped, "7"):
		return "+" + stripped
	case len(stripped) == 10 && allDigits(stripped):
		// Bare ten digits, mobile (9xx) or otherwise, are treated as
		// Russian numbers missing their country code.
		return "+7" + stripped
	default:
		return stripped
	}
}

// Extract scans text and returns one Match per non-overlapping phone-like
// run, in left-to-right order. No matches yields an empty (nil) slice.
func Extract(text string) []Match {
	raw := pattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(raw))
	for _, m := range raw {
		original := strings.TrimSpace(m)
		matches = append(matches, Match{
			Original:   original,
			Normalized: Normalize(original),
		})
	}
	return matches
}

// strip removes every character except digits, keeping a leading +.
func strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch >= '0' && ch <= '9' {
			b.WriteByte(ch)
		} else if ch == '+' && b.Len() == 0 {
			b.WriteByte(ch)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
