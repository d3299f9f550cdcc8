// Package citations queries bibliographic sources for evidence supporting
// ingredient health claims and returns unified, deduplicated, ranked
// Citation records.
package citations

import (
	"sort"
	"strings"
	"unicode"
)

// SourceType labels where a citation came from; the assembler surfaces it to
// clients so regulatory references can be displayed differently from papers.
type SourceType string

const (
	SourceAcademic        SourceType = "academic"
	SourceHealthAuthority SourceType = "health_authority"
	SourceRegulatory      SourceType = "regulatory"
	SourceUnknown         SourceType = "unknown"
)

// Citation is the common shape every source adapter maps into. IDs are
// assigned later by the assembler and are scoped to a single assessment.
type Citation struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Journal        string     `json:"journal"`
	Year           int        `json:"year"`
	URL            string     `json:"url"`
	SourceType     SourceType `json:"source_type"`
	RelevanceScore float64    `json:"relevance_score"`
}

// TitleKey exposes the dedup key so downstream consumers (the assembler
// numbers citations assessment-wide) collapse titles the same way sources do.
func TitleKey(title string) string {
	return normalizeTitle(title)
}

// normalizeTitle lowercases and strips everything but letters and digits so
// near-identical titles from different sources collapse to one key.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// deduplicate merges citations sharing a normalized title, keeping the first
// occurrence and backfilling its empty fields from later duplicates.
func deduplicate(in []Citation) []Citation {
	seen := make(map[string]int, len(in))
	var out []Citation
	for _, c := range in {
		key := normalizeTitle(c.Title)
		if key == "" {
			continue
		}
		if idx, dup := seen[key]; dup {
			mergeInto(&out[idx], c)
			continue
		}
		seen[key] = len(out)
		out = append(out, c)
	}
	return out
}

func mergeInto(dst *Citation, src Citation) {
	if dst.Journal == "" && src.Journal != "" {
		dst.Journal = src.Journal
	}
	if dst.Year == 0 && src.Year != 0 {
		dst.Year = src.Year
	}
	if dst.URL == "" && src.URL != "" {
		dst.URL = src.URL
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if dst.SourceType == SourceUnknown && src.SourceType != SourceUnknown {
		dst.SourceType = src.SourceType
	}
}

// rank orders citations by the canonical composite key: relevance signal
// descending, then publication year descending.
func rank(cites []Citation) {
	sort.SliceStable(cites, func(i, j int) bool {
		if cites[i].RelevanceScore != cites[j].RelevanceScore {
			return cites[i].RelevanceScore > cites[j].RelevanceScore
		}
		return cites[i].Year > cites[j].Year
	})
}

// doiURL turns a bare DOI into a fully qualified URL. Already-qualified
// values pass through.
func doiURL(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return ""
	}
	if strings.HasPrefix(doi, "http://") || strings.HasPrefix(doi, "https://") {
		return doi
	}
	return "https://doi.org/" + strings.TrimPrefix(doi, "doi:")
}
