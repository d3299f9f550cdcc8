package categorize

import (
	"fmt"
	"strings"
)

// buildPrompt asks for exactly the plain-text tier format parseReply
// understands. Low-risk ingredients are inferred by omission, so the model
// only writes analyses for the elevated tiers.
func buildPrompt(productName string, names []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Assess the health risk of each ingredient in the packaged meat product %q.\n\n", productName)
	b.WriteString("Ingredients:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}

	b.WriteString(`
Assign each ingredient to exactly one tier based on the strength of published
evidence of harm at typical dietary exposure:

HIGH RISK: strong evidence of harm (e.g. IARC group 1/2A mechanisms, consistent
epidemiology).
MODERATE RISK: suggestive or conflicting evidence, or harm only at high intake.
LOW RISK: no credible evidence of harm at typical consumption levels.

Respond in plain text using exactly this format, with one line per ingredient:

HIGH RISK:
- Ingredient Name: one-sentence causal explanation, at most 180 characters.

MODERATE RISK:
- Ingredient Name: one-sentence causal explanation, at most 180 characters.

LOW RISK:
- Ingredient Name

Use the ingredient names exactly as given. List every ingredient once. Do not
add commentary outside the tiers.
`)
	return b.String()
}
