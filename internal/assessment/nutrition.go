package assessment

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/meatwise/assessment-engine/internal/llm"
)

// CommentaryMaxChars bounds each nutrient comment.
const CommentaryMaxChars = 80

// CommentaryTimeout bounds each per-nutrient LLM call.
const CommentaryTimeout = 8 * time.Second

// Daily values in grams, per FDA labeling guidance (sodium DV converted to
// salt equivalent).
const (
	dvProteinG = 50.0
	dvFatG     = 78.0
	dvCarbsG   = 275.0
	dvSaltG    = 6.0
)

// Evaluation cut points as a fraction of daily value per serving.
const (
	highDVShare     = 0.20
	moderateDVShare = 0.05
)

// NutritionFacts holds per-serving amounts in grams as supplied by the
// product catalog. Negative values mean the field was absent.
type NutritionFacts struct {
	ProteinG       float64
	FatG           float64
	CarbohydratesG float64
	SaltG          float64
}

type nutrientSpec struct {
	name   string
	amount func(NutritionFacts) float64
	dv     float64
}

var nutrientSpecs = []nutrientSpec{
	{"Protein", func(f NutritionFacts) float64 { return f.ProteinG }, dvProteinG},
	{"Fat", func(f NutritionFacts) float64 { return f.FatG }, dvFatG},
	{"Carbohydrates", func(f NutritionFacts) float64 { return f.CarbohydratesG }, dvCarbsG},
	{"Salt", func(f NutritionFacts) float64 { return f.SaltG }, dvSaltG},
}

func evaluate(amount, dv float64) string {
	share := amount / dv
	switch {
	case share >= highDVShare:
		return "high"
	case share > moderateDVShare:
		return "moderate"
	default:
		return "low"
	}
}

// BuildNutritionInsights evaluates the four fixed nutrients. Commentary
// comes from the model when a caller is supplied and answers within the
// bound; otherwise the deterministic template for (nutrient, evaluation) is
// used. Nutrients with absent amounts are skipped.
func BuildNutritionInsights(ctx context.Context, caller llm.Caller, productName string, facts NutritionFacts) []NutritionInsight {
	out := make([]NutritionInsight, 0, len(nutrientSpecs))
	for _, spec := range nutrientSpecs {
		amount := spec.amount(facts)
		if amount < 0 {
			continue
		}
		eval := evaluate(amount, spec.dv)
		out = append(out, NutritionInsight{
			Nutrient:         spec.name,
			AmountPerServing: fmt.Sprintf("%.1fg", amount),
			Evaluation:       eval,
			AICommentary:     commentary(ctx, caller, productName, spec.name, amount, eval),
		})
	}
	return out
}

func commentary(ctx context.Context, caller llm.Caller, productName, nutrient string, amount float64, eval string) string {
	if caller == nil {
		return fallbackCommentary(nutrient, eval)
	}
	callCtx, cancel := context.WithTimeout(ctx, CommentaryTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"In one sentence of at most 80 characters, comment on %.1fg of %s per serving in %q (evaluated as %s intake). Plain text only.",
		amount, strings.ToLower(nutrient), productName, eval)
	reply, err := caller.Complete(callCtx, prompt)
	if err != nil {
		log.Printf("nutrition commentary_failed nutrient=%s err=%v", nutrient, err)
		return fallbackCommentary(nutrient, eval)
	}
	reply = strings.TrimSpace(llm.StripCodeFences(reply))
	if reply == "" || strings.ContainsRune(reply, '\n') {
		return fallbackCommentary(nutrient, eval)
	}
	return truncate(reply, CommentaryMaxChars)
}

func fallbackCommentary(nutrient, eval string) string {
	lower := strings.ToLower(nutrient)
	switch eval {
	case "high":
		return fmt.Sprintf("High in %s: over 20%% of the daily value per serving.", lower)
	case "moderate":
		return fmt.Sprintf("Moderate %s content relative to the daily value.", lower)
	default:
		return fmt.Sprintf("Low in %s per serving.", lower)
	}
}
