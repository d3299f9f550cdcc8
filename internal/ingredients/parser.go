// Package ingredients turns raw label text into an ordered, deduplicated
// list of ingredient names. Nested sub-ingredients in brackets are flattened
// one level; descriptive parentheticals are discarded.
package ingredients

import (
	"regexp"
	"strings"
)

const (
	// MaxInputChars bounds how much label text is processed. Labels longer
	// than this are truncated before parsing.
	MaxInputChars = 5000

	// DefaultMaxItems caps the number of parsed ingredient names.
	DefaultMaxItems = 100

	minNameChars = 2
)

// containsClauseRe matches "Contains 2% or less of" / "Contains less than 2% of"
// style clauses that introduce a trailing group of minor ingredients.
var containsClauseRe = regexp.MustCompile(`(?i)contains\s+(?:less\s+than\s+)?\d+(?:\.\d+)?\s*%\s*(?:or\s+less\s+)?(?:of\b)?:?\s*`)

// percentPrefixRe strips leading quantity markers like "2% " or "98.5% ".
var percentPrefixRe = regexp.MustCompile(`^(?:less\s+than\s+)?\d+(?:\.\d+)?\s*%\s*`)

var stoplist = map[string]struct{}{
	"none":        {},
	"n/a":         {},
	"na":          {},
	"nil":         {},
	"empty":       {},
	"unknown":     {},
	"ingredients": {},
	"ingredient":  {},
	"and":         {},
	"or":          {},
}

// Words that commonly precede a period without ending a clause.
var abbreviations = map[string]struct{}{
	"no":  {},
	"vit": {},
	"st":  {},
	"inc": {},
	"u.s": {},
}

// Parse extracts ingredient names from free-text label copy using the
// default item cap. Empty or missing input yields an empty list.
func Parse(text string) []string {
	return ParseN(text, DefaultMaxItems)
}

// ParseN is Parse with an explicit cap on the number of returned names.
func ParseN(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxItems
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	if len(text) > MaxInputChars {
		text = text[:MaxInputChars]
	}

	// The "contains X% or less of" clause separates major ingredients from a
	// trailing minor group. Both halves parse the same way; order is kept.
	var raw []string
	if loc := containsClauseRe.FindStringIndex(text); loc != nil {
		raw = append(extractEntries(text[:loc[0]]), extractEntries(text[loc[1]:])...)
	} else {
		raw = extractEntries(text)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		name := cleanName(entry)
		if !validName(name) {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
		if len(out) >= max {
			break
		}
	}
	return out
}

// extractEntries splits text into candidate entries, flattening one level of
// bracketed sub-ingredient groups. A parent like "Water [Salt, Spice]" yields
// "Water", then "Salt" and "Spice".
func extractEntries(text string) []string {
	var entries []string
	var cur strings.Builder
	var nested strings.Builder
	depth := 0
	var open rune

	flushCur := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			entries = append(entries, s)
		}
		cur.Reset()
	}
	flushNested := func(close rune) {
		inner := strings.TrimSpace(nested.String())
		nested.Reset()
		if inner == "" {
			return
		}
		// Square brackets always hold sub-ingredients. Parentheses only do
		// when they contain a comma-separated list; "(organic)" and similar
		// descriptors are dropped.
		if close == ')' && !strings.Contains(inner, ",") {
			return
		}
		flushCur()
		for _, part := range splitFlat(inner) {
			if p := strings.TrimSpace(part); p != "" {
				entries = append(entries, p)
			}
		}
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case depth == 0 && (r == '[' || r == '('):
			depth = 1
			open = r
		case depth > 0 && r == open:
			depth++
			nested.WriteRune(r)
		case depth > 0 && ((open == '[' && r == ']') || (open == '(' && r == ')')):
			depth--
			if depth == 0 {
				flushNested(r)
			} else {
				nested.WriteRune(r)
			}
		case depth > 0:
			nested.WriteRune(r)
		case r == ',' || r == ';':
			flushCur()
		case r == '.':
			if sentenceBreak(runes, i) {
				flushCur()
			} else {
				cur.WriteRune(r)
			}
		default:
			cur.WriteRune(r)
		}
	}
	flushCur()
	return entries
}

// splitFlat splits an already-extracted nested group on commas/semicolons only.
func splitFlat(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
}

// sentenceBreak reports whether the period at runes[i] ends a clause rather
// than an abbreviation or a decimal number.
func sentenceBreak(runes []rune, i int) bool {
	if i+1 < len(runes) {
		next := runes[i+1]
		if next >= '0' && next <= '9' {
			return false
		}
	}
	// Walk back to the start of the preceding word.
	j := i
	for j > 0 && runes[j-1] != ' ' && runes[j-1] != ',' && runes[j-1] != ';' {
		j--
	}
	word := strings.ToLower(string(runes[j:i]))
	if len(word) <= 1 {
		return false
	}
	if _, abbr := abbreviations[word]; abbr {
		return false
	}
	return true
}

// cleanName normalizes a raw entry: bullets, quantity prefixes, connector
// words, and runs of whitespace.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•·:.")
	s = strings.TrimSpace(s)
	s = percentPrefixRe.ReplaceAllString(s, "")

	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "and "):
			s = s[4:]
		case strings.HasPrefix(lower, "or "):
			s = s[3:]
		case strings.HasPrefix(lower, "derived from "):
			s = s[13:]
		case strings.HasPrefix(lower, "contains "):
			s = s[9:]
		default:
			return strings.Join(strings.Fields(s), " ")
		}
		s = strings.TrimSpace(s)
	}
}

func validName(name string) bool {
	if len(name) < minNameChars {
		return false
	}
	if _, stopped := stoplist[strings.ToLower(name)]; stopped {
		return false
	}
	// Entries that are pure punctuation or digits are label noise.
	hasLetter := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			hasLetter = true
			break
		}
	}
	return hasLetter
}
