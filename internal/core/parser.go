package core

import (
	"strconv"
	"strings"
	"unicode"
)

// isBlank reports runes trimmed around message text: Unicode whitespace plus
// the invisible direction and zero-width marks chat clients add to RTL text.
func isBlank(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u200e', '\u200f', '\ufeff',
		'\u202a', '\u202b', '\u202c', '\u202d', '\u202e',
		'\u2066', '\u2067', '\u2068', '\u2069':
		return true
	}
	return false
}

// TrimText trims whitespace and invisible direction marks from both ends.
func TrimText(s string) string {
	return strings.TrimFunc(s, isBlank)
}

// ParseAction turns "<quantity> <action name>" into a ParsedAction.
// Every input yields either a ParsedAction or a *ParseFailure.
func ParseAction(text string) (ParsedAction, error) {
	s := TrimText(text)

	cut := strings.IndexFunc(s, unicode.IsSpace)
	if cut < 0 {
		return ParsedAction{}, &ParseFailure{Reason: NotTwoTokens, Text: text}
	}
	token, rest := TrimText(s[:cut]), s[cut:]

	qty, ok := parsePositiveInt(token)
	if !ok {
		return ParsedAction{}, &ParseFailure{Reason: QuantityNotInteger, Text: text}
	}

	name := TrimText(rest)
	if name == "" {
		return ParsedAction{}, &ParseFailure{Reason: EmptyActionName, Text: text}
	}

	return ParsedAction{Quantity: qty, ActionName: name}, nil
}

// parsePositiveInt accepts ASCII digits only; signs, separators and zero are rejected.
func parsePositiveInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
