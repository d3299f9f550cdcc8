package report

import (
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {
	md := "# Health Assessment: Smoked Sausage\n\n| Nutrient | Per Serving |\n|---|---|\n| Fat | 22.0g |\n"
	out, err := RenderHTML(md, "Smoked Sausage")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{
		"<title>Smoked Sausage</title>",
		"<h1",
		"Health Assessment: Smoked Sausage",
		"<table>",
		"<td>22.0g</td>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHTMLEscapesTitle(t *testing.T) {
	out, err := RenderHTML("body", "<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(out, "<script>alert") {
		t.Fatal("title must be escaped")
	}
}
