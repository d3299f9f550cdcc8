// Package assessment defines the health-assessment output object and the
// deterministic assembler that builds it from categorization and literature
// results.
package assessment

import (
	"strings"
	"time"

	"github.com/meatwise/assessment-engine/internal/citations"
)

// RiskSummary is the letter grade and traffic-light color shown to users.
// Both come from the externally supplied risk rating, never from the LLM.
type RiskSummary struct {
	Grade string `json:"grade"`
	Color string `json:"color"`
}

// GradeForRating maps an external risk rating onto the fixed grade table.
// Orange and Red both collapse to D; unknown ratings read as Yellow/C.
func GradeForRating(rating string) RiskSummary {
	switch strings.ToLower(strings.TrimSpace(rating)) {
	case "green":
		return RiskSummary{Grade: "A", Color: "Green"}
	case "yellow":
		return RiskSummary{Grade: "C", Color: "Yellow"}
	case "orange":
		return RiskSummary{Grade: "D", Color: "Orange"}
	case "red":
		return RiskSummary{Grade: "D", Color: "Red"}
	default:
		return RiskSummary{Grade: "C", Color: "Yellow"}
	}
}

// Ingredient is one assessed ingredient. CitationIDs reference entries in the
// owning Assessment's Citations list; it is empty when no literature was
// found, never fabricated.
type Ingredient struct {
	Name        string `json:"name"`
	RiskLevel   string `json:"risk_level"`
	MicroReport string `json:"micro_report"`
	CitationIDs []int  `json:"citation_ids"`
}

// IngredientsAssessment groups ingredients by risk tier.
type IngredientsAssessment struct {
	HighRisk     []Ingredient `json:"high_risk"`
	ModerateRisk []Ingredient `json:"moderate_risk"`
	LowRisk      []Ingredient `json:"low_risk"`
}

// NutritionInsight evaluates one nutrient against daily-value thresholds.
type NutritionInsight struct {
	Nutrient         string `json:"nutrient"`
	AmountPerServing string `json:"amount_per_serving"`
	Evaluation       string `json:"evaluation"`
	AICommentary     string `json:"ai_commentary"`
}

// Metadata carries product identity and provenance for one assessment.
type Metadata struct {
	ProductCode    string    `json:"product_code"`
	ProductName    string    `json:"product_name"`
	GeneratedAt    time.Time `json:"generated_at"`
	AssessmentType string    `json:"assessment_type"`
	Notes          []string  `json:"notes,omitempty"`
}

// Assessment types recorded in Metadata.AssessmentType.
const (
	TypeFull     = "full"
	TypeFallback = "fallback"
	TypeMinimal  = "minimal_fallback"
)

// Assessment is the full structured output for one product. It is immutable
// once returned; a newer version supersedes it via cache-key rotation rather
// than mutation.
type Assessment struct {
	Summary               string                `json:"summary"`
	RiskSummary           RiskSummary           `json:"risk_summary"`
	IngredientsAssessment IngredientsAssessment `json:"ingredients_assessment"`
	NutritionInsights     []NutritionInsight    `json:"nutrition_insights"`
	Citations             []citations.Citation  `json:"citations"`
	Metadata              Metadata              `json:"metadata"`
}
