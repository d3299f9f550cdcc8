package assessment

import (
	"fmt"
	"strings"
	"time"
)

// BuildReportMarkdown renders an Assessment as a markdown document for the
// HTML and PDF report endpoints.
func BuildReportMarkdown(a Assessment) string {
	var b strings.Builder
	buildReportHeader(&b, a)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "**Grade: %s (%s)**\n\n", a.RiskSummary.Grade, a.RiskSummary.Color)
	fmt.Fprintf(&b, "%s\n\n", a.Summary)

	buildTierSection(&b, "High-Risk Ingredients", a.IngredientsAssessment.HighRisk)
	buildTierSection(&b, "Moderate-Risk Ingredients", a.IngredientsAssessment.ModerateRisk)
	buildLowRiskSection(&b, a.IngredientsAssessment.LowRisk)
	buildNutritionSection(&b, a.NutritionInsights)
	buildCitationsSection(&b, a)
	buildReportFooter(&b, a)
	return b.String()
}

func buildReportHeader(b *strings.Builder, a Assessment) {
	fmt.Fprintf(b, "# Health Assessment: %s\n\n", a.Metadata.ProductName)
	fmt.Fprintf(b, "- Product code: %s\n", a.Metadata.ProductCode)
	fmt.Fprintf(b, "- Generated: %s\n\n", a.Metadata.GeneratedAt.Format(time.RFC3339))
}

func buildTierSection(b *strings.Builder, title string, list []Ingredient) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, ing := range list {
		fmt.Fprintf(b, "- **%s** — %s\n", ing.Name, ing.MicroReport)
	}
	b.WriteString("\n")
}

func buildLowRiskSection(b *strings.Builder, list []Ingredient) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintf(b, "## Low-Risk Ingredients\n\n")
	names := make([]string, len(list))
	for i, ing := range list {
		names[i] = ing.Name
	}
	fmt.Fprintf(b, "%s\n\n", strings.Join(names, ", "))
}

func buildNutritionSection(b *strings.Builder, insights []NutritionInsight) {
	if len(insights) == 0 {
		return
	}
	fmt.Fprintf(b, "## Nutrition\n\n")
	fmt.Fprintf(b, "| Nutrient | Per Serving | Evaluation | Comment |\n")
	fmt.Fprintf(b, "|---|---|---|---|\n")
	for _, n := range insights {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", n.Nutrient, n.AmountPerServing, n.Evaluation, n.AICommentary)
	}
	b.WriteString("\n")
}

func buildCitationsSection(b *strings.Builder, a Assessment) {
	if len(a.Citations) == 0 {
		return
	}
	fmt.Fprintf(b, "## Citations\n\n")
	for _, c := range a.Citations {
		line := fmt.Sprintf("%d. %s", c.ID, c.Title)
		if c.Journal != "" {
			line += fmt.Sprintf(", %s", c.Journal)
		}
		if c.Year > 0 {
			line += fmt.Sprintf(" (%d)", c.Year)
		}
		if c.URL != "" {
			line += fmt.Sprintf(" — <%s>", c.URL)
		}
		fmt.Fprintf(b, "%s\n", line)
	}
	b.WriteString("\n")
}

func buildReportFooter(b *strings.Builder, a Assessment) {
	for _, note := range a.Metadata.Notes {
		fmt.Fprintf(b, "> %s\n", note)
	}
	fmt.Fprintf(b, "\n*Assessment type: %s.*\n", a.Metadata.AssessmentType)
}
