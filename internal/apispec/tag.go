// SPDX-License-Identifier: AGPL-3.0-or-later
package apispec

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var versionSegment = regexp.MustCompile(`/v\d+/([^/]+)`)

// DeriveTag returns the classification tag for an endpoint path.
//
// The first segment after a version marker (/v1/, /v2/, ...) wins; without
// a marker the second slash-separated component is used. Paths that yield
// neither return "".
func DeriveTag(path string) string {
	if m := versionSegment.FindStringSubmatch(path); m != nil && m[1] != "" {
		return m[1]
	}
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// StartCase turns an identifier into a display title: "fleet-status" and
// "fleetStatus" both become "Fleet Status", "HTTPServer" becomes
// "HTTP Server", "1st-floor" becomes "1st Floor". Diacritics are dropped
// ("café" becomes "Cafe"). Only the first rune of each word is changed.
func StartCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

type runeClass int

const (
	classOther runeClass = iota
	classLower
	classUpper
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsLetter(r):
		return classLower
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classOther
	}
}

// Latin letters with no canonical decomposition.
var ligatures = strings.NewReplacer(
	"ß", "ss", "Æ", "Ae", "æ", "ae", "Œ", "Oe", "œ", "oe",
	"Ø", "O", "ø", "o", "Đ", "D", "đ", "d", "Ð", "D", "ð", "d",
	"Ł", "L", "ł", "l", "Þ", "Th", "þ", "th", "ı", "i",
)

func deburr(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return ligatures.Replace(s)
	}
	return ligatures.Replace(out)
}

// ordinalAt reports whether rs[i:i+2] is the ordinal suffix for the digit
// at rs[i-1], as in "1st", "22nd" or "4TH".
func ordinalAt(rs []rune, i int) bool {
	if i+2 > len(rs) {
		return false
	}
	suffix := string(rs[i : i+2])
	lower := strings.ToLower(suffix)
	if suffix != lower && suffix != strings.ToUpper(suffix) {
		return false
	}
	want := "th"
	switch rs[i-1] {
	case '1':
		want = "st"
	case '2':
		want = "nd"
	case '3':
		want = "rd"
	}
	if lower != want {
		return false
	}
	if i+2 == len(rs) {
		return true
	}
	next := classify(rs[i+2])
	return next == classOther || (suffix == lower && next == classUpper)
}

func splitWords(s string) []string {
	s = strings.NewReplacer("'", "", "’", "").Replace(deburr(s))
	rs := []rune(s)

	var (
		words []string
		start = -1
		join  int
	)
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(rs[start:end]))
		}
		start = -1
	}

	for i, r := range rs {
		cur := classify(r)
		if cur == classOther {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if i < join {
			continue
		}
		prev := classify(rs[i-1])
		switch {
		case prev == classLower && cur == classUpper:
			flush(i)
			start = i
		case prev == classDigit && ordinalAt(rs, i):
			join = i + 2
		case (prev == classDigit) != (cur == classDigit):
			flush(i)
			start = i
		case prev == classUpper && cur == classUpper &&
			i+1 < len(rs) && classify(rs[i+1]) == classLower:
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return words
}
