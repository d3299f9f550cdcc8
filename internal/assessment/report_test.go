package assessment

import (
	"strings"
	"testing"
)

func TestBuildReportMarkdown(t *testing.T) {
	a := Assemble(sampleInput())
	md := BuildReportMarkdown(a)

	for _, want := range []string{
		"# Health Assessment: Smoked Sausage",
		"Product code: 000123",
		"**Grade: C (Yellow)**",
		"## High-Risk Ingredients",
		"**Sodium Nitrite**",
		"## Low-Risk Ingredients",
		"Pork, Salt, Water",
		"## Citations",
		"1. Nitrite and cancer, Gut (2021)",
		"*Assessment type: full.*",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestBuildReportMarkdownMinimal(t *testing.T) {
	a := Minimal("000123", "Ham", "Green", nil, sampleInput().GeneratedAt)
	md := BuildReportMarkdown(a)
	if strings.Contains(md, "## Citations") {
		t.Fatal("minimal report has no citations section")
	}
	if !strings.Contains(md, "minimal_fallback") {
		t.Fatalf("got:\n%s", md)
	}
}
