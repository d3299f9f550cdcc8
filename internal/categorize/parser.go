package categorize

import (
	"log"
	"regexp"
	"strings"
)

// Model replies drift: headers gain markdown emphasis, bullets switch
// between "-" and "*", delimiters between ":" and " - ". One grammar
// absorbs all of it; lines that still fail are logged and skipped rather
// than failing the whole reply.

var headerRe = regexp.MustCompile(`^(high|moderate|medium|low)(?:[ -]?risk)?(?:\s+ingredients)?$`)

// tierHeader reports whether a line introduces a tier section.
func tierHeader(line string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(line))
	s = strings.Trim(s, "#*-=_ \t")
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	s = strings.Trim(s, "*_ ")
	m := headerRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	tier := m[1]
	if tier == "medium" {
		tier = "moderate"
	}
	return tier, true
}

// parseEntry splits an ingredient line into name and micro-report. Accepted
// shapes: "- X: Y", "* X: Y", "X: Y", "- X - Y", and a bare bulleted name.
func parseEntry(line string) (name, note string, ok bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", "", false
	}
	bulleted := false
	for _, b := range []string{"- ", "* ", "• ", "+ "} {
		if strings.HasPrefix(s, b) {
			s = strings.TrimSpace(strings.TrimPrefix(s, b))
			bulleted = true
			break
		}
	}
	switch {
	case strings.Contains(s, ":"):
		name, note, _ = strings.Cut(s, ":")
	case bulleted && strings.Contains(s, " - "):
		name, note, _ = strings.Cut(s, " - ")
	case bulleted:
		name = s
	default:
		return "", "", false
	}
	name = strings.Trim(strings.TrimSpace(name), "*_")
	note = strings.TrimSpace(note)
	if !validName(name) {
		return "", "", false
	}
	if len(note) > MicroReportMaxChars {
		note = strings.TrimSpace(note[:MicroReportMaxChars])
	}
	return name, note, true
}

// explanatoryPrefixes catches sentences the model writes where an
// ingredient name belongs.
var explanatoryPrefixes = []string{
	"note", "these ingredients", "the following", "overall", "summary",
	"analysis", "explanation", "in conclusion", "in summary", "based on",
	"all of the", "none of the",
}

func validName(name string) bool {
	if len(name) < 2 || len(name) > 60 {
		return false
	}
	lower := strings.ToLower(name)
	for _, p := range explanatoryPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

// parseReply walks the reply line by line, bucketing entries under the most
// recent tier header. Ingredients the model never mentions land in the low
// tier with the fixed no-concerns sentence. Returns false when no tier
// header is present at all, which means the reply ignored the format.
func parseReply(text string, names []string) (Result, bool) {
	res := Result{
		High:     map[string]string{},
		Moderate: map[string]string{},
		Low:      map[string]string{},
		Status:   StatusParsed,
	}

	// Canonical casing comes from the parsed ingredient list, not the model.
	canonical := make(map[string]string, len(names))
	for _, n := range names {
		canonical[strings.ToLower(n)] = n
	}

	sawHeader := false
	tier := ""
	for _, line := range strings.Split(text, "\n") {
		if t, ok := tierHeader(line); ok {
			tier = t
			sawHeader = true
			continue
		}
		if tier == "" || strings.TrimSpace(line) == "" {
			continue
		}
		name, note, ok := parseEntry(line)
		if !ok {
			log.Printf("categorize line_skipped tier=%s line=%q", tier, strings.TrimSpace(line))
			continue
		}
		canon, known := canonical[strings.ToLower(name)]
		if !known {
			log.Printf("categorize unknown_ingredient name=%q", name)
			continue
		}
		switch tier {
		case "high":
			res.High[canon] = note
		case "moderate":
			res.Moderate[canon] = note
		case "low":
			res.Low[canon] = LowRiskNote
		}
	}
	if !sawHeader {
		return Result{}, false
	}

	// Unmentioned ingredients default to low.
	for _, n := range names {
		if _, ok := res.High[n]; ok {
			continue
		}
		if _, ok := res.Moderate[n]; ok {
			continue
		}
		if _, ok := res.Low[n]; ok {
			continue
		}
		res.Low[n] = LowRiskNote
	}
	return res, true
}
