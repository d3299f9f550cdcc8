package assessment

// The mobile projection trims the assessment for small payloads: a short
// summary, the two most pressing ingredients, three nutrients, and a
// flattened citation list. Citations without a URL are kept and serialize an
// empty "url" value rather than being dropped.

// MobileSummaryMaxChars bounds the truncated summary.
const MobileSummaryMaxChars = 200

// MobileCitation always serializes its url key.
type MobileCitation struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// MobileAssessment is the reduced projection served to mobile clients.
type MobileAssessment struct {
	Summary     string             `json:"summary"`
	RiskSummary RiskSummary        `json:"risk_summary"`
	TopRisks    []Ingredient       `json:"top_risks"`
	Nutrition   []NutritionInsight `json:"nutrition"`
	Citations   []MobileCitation   `json:"citations"`
	Metadata    Metadata           `json:"metadata"`
}

var mobileNutrients = map[string]bool{"Protein": true, "Fat": true, "Salt": true}

// MobileView projects an Assessment for mobile clients: top-2 risks drawn
// high tier first, three fixed nutrients, all citations.
func MobileView(a Assessment) MobileAssessment {
	top := make([]Ingredient, 0, 2)
	for _, ing := range a.IngredientsAssessment.HighRisk {
		if len(top) == 2 {
			break
		}
		top = append(top, ing)
	}
	for _, ing := range a.IngredientsAssessment.ModerateRisk {
		if len(top) == 2 {
			break
		}
		top = append(top, ing)
	}

	nutrition := make([]NutritionInsight, 0, 3)
	for _, n := range a.NutritionInsights {
		if mobileNutrients[n.Nutrient] {
			nutrition = append(nutrition, n)
		}
	}

	cites := make([]MobileCitation, 0, len(a.Citations))
	for _, c := range a.Citations {
		cites = append(cites, MobileCitation{ID: c.ID, Title: c.Title, URL: c.URL})
	}

	return MobileAssessment{
		Summary:     truncate(a.Summary, MobileSummaryMaxChars),
		RiskSummary: a.RiskSummary,
		TopRisks:    top,
		Nutrition:   nutrition,
		Citations:   cites,
		Metadata:    a.Metadata,
	}
}
