package assessment

import (
	"fmt"
	"strings"
)

// SummaryMaxChars bounds the generated summary; the mechanism sentence is
// trimmed first when over budget.
const SummaryMaxChars = 450

type mechanism struct {
	keywords []string
	text     string
}

// Ordered: first match wins, so nitrite beats the generic fallback.
var mechanisms = []mechanism{
	{[]string{"nitrite", "nitrate"}, "forms carcinogenic nitrosamines during curing and digestion"},
	{[]string{"bha", "bht", "butylated"}, "may disrupt endocrine function and has shown carcinogenic activity in animal studies"},
	{[]string{"msg", "monosodium glutamate"}, "can trigger headaches and flushing reactions in sensitive individuals"},
}

const genericMechanism = "has been linked to adverse health effects in published research"

func mechanismFor(name string) string {
	lower := strings.ToLower(name)
	for _, m := range mechanisms {
		for _, kw := range m.keywords {
			if strings.Contains(lower, kw) {
				return m.text
			}
		}
	}
	return genericMechanism
}

// BuildSummary composes the assessment summary deterministically from the
// grade and the offending ingredients. No LLM involvement, so the summary is
// stable across runs of the same input.
func BuildSummary(rs RiskSummary, high, moderate []Ingredient) string {
	base := fmt.Sprintf("This product receives a grade of %s (%s).", rs.Grade, rs.Color)

	var offenders string
	switch {
	case len(high) > 0 && len(moderate) > 0:
		offenders = fmt.Sprintf(" High-risk ingredients: %s. Moderate-risk ingredients: %s.",
			joinNames(high), joinNames(moderate))
	case len(high) > 0:
		offenders = fmt.Sprintf(" High-risk ingredients: %s.", joinNames(high))
	case len(moderate) > 0:
		offenders = fmt.Sprintf(" Moderate-risk ingredients: %s.", joinNames(moderate))
	default:
		offenders = " No high- or moderate-risk ingredients were identified."
	}

	var mech string
	if len(high) > 0 {
		mech = fmt.Sprintf(" %s %s.", high[0].Name, mechanismFor(high[0].Name))
	} else if len(moderate) > 0 {
		mech = fmt.Sprintf(" %s %s.", moderate[0].Name, mechanismFor(moderate[0].Name))
	}

	s := base + offenders + mech
	if len(s) > SummaryMaxChars {
		s = base + offenders
	}
	if len(s) > SummaryMaxChars {
		s = truncate(s, SummaryMaxChars)
	}
	return s
}

// truncate cuts s to at most max bytes on a rune boundary, appending an
// ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - len("…")
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut]) + "…"
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func joinNames(list []Ingredient) string {
	names := make([]string, len(list))
	for i, ing := range list {
		names[i] = ing.Name
	}
	return strings.Join(names, ", ")
}
