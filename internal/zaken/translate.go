package zaken

import (
	"strings"

	"golang.org/x/text/cases"
)

// Translation maps an upstream enumerated text to its client-facing value.
// A hidden entry suppresses the value entirely.
type Translation struct {
	From   string
	To     string
	Hidden bool
}

// Translations is an ordered table; the first case-insensitive match wins.
type Translations []Translation

// T builds a visible translation.
func T(from, to string) Translation {
	return Translation{From: from, To: to}
}

// Hide builds an entry whose match always yields null.
func Hide(from string) Translation {
	return Translation{From: from, Hidden: true}
}

// Translate looks value up in table. Null input stays null. Without a match the
// result is the input itself when fallback is set, and null otherwise.
func Translate(value any, table Translations, fallback bool) any {
	if value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		s = stringify(value)
	}
	key := fold(s)
	for _, tr := range table {
		if fold(tr.From) != key {
			continue
		}
		if tr.Hidden {
			return nil
		}
		return tr.To
	}
	if fallback {
		return s
	}
	return nil
}

// fold returns the caseless form of s. A cases.Caser is stateful, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold compares two upstream texts caselessly.
func EqualFold(a, b string) bool {
	return fold(a) == fold(b)
}

// HasPrefixFold reports whether s starts with prefix, ignoring case.
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(fold(s), fold(prefix))
}

// InFold reports whether s caselessly equals any of the candidates.
func InFold(s string, candidates ...string) bool {
	key := fold(s)
	for _, c := range candidates {
		if fold(c) == key {
			return true
		}
	}
	return false
}
