package assessment

import (
	"fmt"
	"sort"
	"time"

	"github.com/meatwise/assessment-engine/internal/categorize"
	"github.com/meatwise/assessment-engine/internal/citations"
)

// LowRiskCap bounds the low-risk list; anything beyond it is noted in
// metadata rather than listed.
const LowRiskCap = 30

// Input is everything the assembler needs. Literature maps ingredient name
// to its ranked citation set; missing keys mean no literature was found.
type Input struct {
	ProductCode    string
	ProductName    string
	RiskRating     string
	Categorization categorize.Result
	Literature     map[string][]citations.Citation
	Nutrition      []NutritionInsight
	GeneratedAt    time.Time
}

// Assemble builds a complete Assessment deterministically: same input, same
// output. The grade comes only from the external rating; ingredients are
// sorted alphabetically within each tier so repeated runs serialize
// identically.
func Assemble(in Input) Assessment {
	summary := GradeForRating(in.RiskRating)
	num := newNumberer()

	high := buildTier(in.Categorization.High, "high", in.Literature, num)
	moderate := buildTier(in.Categorization.Moderate, "moderate", in.Literature, num)
	low, omitted := buildLowTier(in.Categorization.Low)

	meta := Metadata{
		ProductCode:    in.ProductCode,
		ProductName:    in.ProductName,
		GeneratedAt:    in.GeneratedAt,
		AssessmentType: TypeFull,
	}
	if in.Categorization.Fallback {
		meta.AssessmentType = TypeFallback
		meta.Notes = append(meta.Notes, "Ingredient risk analysis used the deterministic fallback; AI categorization was unavailable.")
	}
	if omitted > 0 {
		meta.Notes = append(meta.Notes, fmt.Sprintf("%d additional low-risk ingredients omitted from the list.", omitted))
	}

	return Assessment{
		Summary:     BuildSummary(summary, high, moderate),
		RiskSummary: summary,
		IngredientsAssessment: IngredientsAssessment{
			HighRisk:     high,
			ModerateRisk: moderate,
			LowRisk:      low,
		},
		NutritionInsights: in.Nutrition,
		Citations:         num.list,
		Metadata:          meta,
	}
}

// Minimal builds the fully deterministic fallback Assessment from product
// identity and the external rating alone. Used when the whole pipeline
// failed; it must always succeed.
func Minimal(code, name, rating string, nutrition []NutritionInsight, now time.Time) Assessment {
	summary := GradeForRating(rating)
	return Assessment{
		Summary:           BuildSummary(summary, nil, nil),
		RiskSummary:       summary,
		NutritionInsights: nutrition,
		Citations:         []citations.Citation{},
		IngredientsAssessment: IngredientsAssessment{
			HighRisk:     []Ingredient{},
			ModerateRisk: []Ingredient{},
			LowRisk:      []Ingredient{},
		},
		Metadata: Metadata{
			ProductCode:    code,
			ProductName:    name,
			GeneratedAt:    now,
			AssessmentType: TypeMinimal,
			Notes:          []string{"Assessment pipeline unavailable; result derived from the external risk rating only."},
		},
	}
}

// numberer assigns assessment-scoped 1-based citation IDs, collapsing
// duplicate titles that surfaced under different ingredients.
type numberer struct {
	ids  map[string]int
	list []citations.Citation
}

func newNumberer() *numberer {
	return &numberer{ids: map[string]int{}, list: []citations.Citation{}}
}

func (n *numberer) assign(c citations.Citation) int {
	key := citations.TitleKey(c.Title)
	if key == "" {
		return 0
	}
	if id, ok := n.ids[key]; ok {
		return id
	}
	c.ID = len(n.list) + 1
	n.ids[key] = c.ID
	n.list = append(n.list, c)
	return c.ID
}

func buildTier(tier map[string]string, level string, lit map[string][]citations.Citation, num *numberer) []Ingredient {
	names := make([]string, 0, len(tier))
	for name := range tier {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Ingredient, 0, len(names))
	for _, name := range names {
		ing := Ingredient{
			Name:        name,
			RiskLevel:   level,
			MicroReport: tier[name],
			CitationIDs: []int{},
		}
		for _, c := range lit[name] {
			if id := num.assign(c); id > 0 {
				ing.CitationIDs = append(ing.CitationIDs, id)
			}
		}
		if len(ing.CitationIDs) > 0 {
			ing.MicroReport = appendMarkers(ing.MicroReport, ing.CitationIDs)
		}
		out = append(out, ing)
	}
	return out
}

func buildLowTier(tier map[string]string) (list []Ingredient, omitted int) {
	names := make([]string, 0, len(tier))
	for name := range tier {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > LowRiskCap {
		omitted = len(names) - LowRiskCap
		names = names[:LowRiskCap]
	}
	list = make([]Ingredient, 0, len(names))
	for _, name := range names {
		list = append(list, Ingredient{
			Name:        name,
			RiskLevel:   "low",
			MicroReport: tier[name],
			CitationIDs: []int{},
		})
	}
	return list, omitted
}

// appendMarkers suffixes the micro-report with bracketed citation markers,
// e.g. "Forms nitrosamines. [1][2]".
func appendMarkers(report string, ids []int) string {
	for i, id := range ids {
		if i == 0 && report != "" {
			report += " "
		}
		report += fmt.Sprintf("[%d]", id)
	}
	return report
}
