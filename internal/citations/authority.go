package citations

import (
	"context"
	"strings"
)

// authorityEntry is one curated health-authority or regulatory reference.
// Matching is keyword-based against the ingredient name; these entries back
// claims about the common problem additives even when the live APIs return
// nothing useful.
type authorityEntry struct {
	keywords []string
	citation Citation
}

var authorityEntries = []authorityEntry{
	{
		keywords: []string{"nitrite", "nitrate", "cured"},
		citation: Citation{
			Title:          "IARC Monographs Volume 114: Red Meat and Processed Meat",
			Journal:        "IARC Monographs on the Evaluation of Carcinogenic Risks to Humans",
			Year:           2018,
			URL:            "https://publications.iarc.fr/564",
			SourceType:     SourceHealthAuthority,
			RelevanceScore: 0.95,
		},
	},
	{
		keywords: []string{"nitrite", "nitrate"},
		citation: Citation{
			Title:          "Re-evaluation of sodium nitrite (E 250) and potassium nitrite (E 249) as food additives",
			Journal:        "EFSA Journal",
			Year:           2017,
			URL:            "https://doi.org/10.2903/j.efsa.2017.4786",
			SourceType:     SourceRegulatory,
			RelevanceScore: 0.9,
		},
	},
	{
		keywords: []string{"processed meat", "bacon", "ham", "sausage", "salami"},
		citation: Citation{
			Title:          "Cancer: Carcinogenicity of the consumption of red meat and processed meat",
			Journal:        "World Health Organization Q&A",
			Year:           2015,
			URL:            "https://www.who.int/news-room/questions-and-answers/item/cancer-carcinogenicity-of-the-consumption-of-red-meat-and-processed-meat",
			SourceType:     SourceHealthAuthority,
			RelevanceScore: 0.85,
		},
	},
	{
		keywords: []string{"bha", "butylated hydroxyanisole"},
		citation: Citation{
			Title:          "Report on Carcinogens: Butylated Hydroxyanisole",
			Journal:        "National Toxicology Program, 15th Report on Carcinogens",
			Year:           2021,
			URL:            "https://ntp.niehs.nih.gov/whatwestudy/assessments/cancer/roc",
			SourceType:     SourceHealthAuthority,
			RelevanceScore: 0.9,
		},
	},
	{
		keywords: []string{"bht", "butylated hydroxytoluene"},
		citation: Citation{
			Title:          "Re-evaluation of butylated hydroxytoluene BHT (E 321) as a food additive",
			Journal:        "EFSA Journal",
			Year:           2012,
			URL:            "https://doi.org/10.2903/j.efsa.2012.2588",
			SourceType:     SourceRegulatory,
			RelevanceScore: 0.85,
		},
	},
	{
		keywords: []string{"msg", "monosodium glutamate", "glutamate"},
		citation: Citation{
			Title:          "Re-evaluation of glutamic acid and glutamates (E 620-625) as food additives",
			Journal:        "EFSA Journal",
			Year:           2017,
			URL:            "https://doi.org/10.2903/j.efsa.2017.4910",
			SourceType:     SourceRegulatory,
			RelevanceScore: 0.85,
		},
	},
	{
		keywords: []string{"salt", "sodium"},
		citation: Citation{
			Title:          "Guideline: Sodium intake for adults and children",
			Journal:        "World Health Organization",
			Year:           2012,
			URL:            "https://www.who.int/publications/i/item/9789241504836",
			SourceType:     SourceHealthAuthority,
			RelevanceScore: 0.7,
		},
	},
	{
		keywords: []string{"phosphate", "phosphoric"},
		citation: Citation{
			Title:          "Re-evaluation of phosphoric acid-phosphates (E 338-341, E 343, E 450-452) as food additives",
			Journal:        "EFSA Journal",
			Year:           2019,
			URL:            "https://doi.org/10.2903/j.efsa.2019.5674",
			SourceType:     SourceRegulatory,
			RelevanceScore: 0.8,
		},
	},
	{
		keywords: []string{"carrageenan"},
		citation: Citation{
			Title:          "Re-evaluation of carrageenan (E 407) and processed Eucheuma seaweed (E 407a) as food additives",
			Journal:        "EFSA Journal",
			Year:           2018,
			URL:            "https://doi.org/10.2903/j.efsa.2018.5238",
			SourceType:     SourceRegulatory,
			RelevanceScore: 0.8,
		},
	},
}

// AuthoritySource serves the curated table. It never fails and never
// touches the network, so it is safe to enable unconditionally.
type AuthoritySource struct{}

func (AuthoritySource) Name() string { return "authority" }

func (AuthoritySource) Search(_ context.Context, ingredient, _ string, limit int) ([]Citation, error) {
	if limit <= 0 {
		limit = 3
	}
	needle := strings.ToLower(ingredient)
	var cites []Citation
	for _, e := range authorityEntries {
		for _, kw := range e.keywords {
			if strings.Contains(needle, kw) {
				cites = append(cites, e.citation)
				break
			}
		}
		if len(cites) >= limit {
			break
		}
	}
	return cites, nil
}
