package assessment

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCaller struct {
	reply string
	err   error
	calls int
}

func (s *stubCaller) Complete(context.Context, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubCaller) ModelName() string { return "stub" }

func TestEvaluateCutPoints(t *testing.T) {
	for _, tc := range []struct {
		amount, dv float64
		want       string
	}{
		{20, 50, "high"},    // 40% DV
		{10, 50, "high"},    // exactly 20%
		{5, 50, "moderate"}, // 10%
		{2.5, 50, "low"},    // exactly 5%
		{1, 50, "low"},      // 2%
		{2, 6, "high"},      // salt heavy
	} {
		if got := evaluate(tc.amount, tc.dv); got != tc.want {
			t.Fatalf("evaluate(%v, %v) = %q, want %q", tc.amount, tc.dv, got, tc.want)
		}
	}
}

func TestBuildNutritionInsightsFallback(t *testing.T) {
	facts := NutritionFacts{ProteinG: 14, FatG: 22, CarbohydratesG: 2, SaltG: 1.8}
	got := BuildNutritionInsights(context.Background(), nil, "Sausage", facts)
	if len(got) != 4 {
		t.Fatalf("expected 4 insights, got %d", len(got))
	}
	byName := map[string]NutritionInsight{}
	for _, n := range got {
		byName[n.Nutrient] = n
	}
	if byName["Fat"].Evaluation != "high" {
		t.Fatalf("22g fat should be high, got %q", byName["Fat"].Evaluation)
	}
	if byName["Carbohydrates"].Evaluation != "low" {
		t.Fatalf("got %q", byName["Carbohydrates"].Evaluation)
	}
	if byName["Salt"].Evaluation != "high" {
		t.Fatalf("1.8g salt should be high, got %q", byName["Salt"].Evaluation)
	}
	for _, n := range got {
		if n.AICommentary == "" || len(n.AICommentary) > CommentaryMaxChars {
			t.Fatalf("bad commentary %q", n.AICommentary)
		}
		if n.AmountPerServing == "" || !strings.HasSuffix(n.AmountPerServing, "g") {
			t.Fatalf("bad amount %q", n.AmountPerServing)
		}
	}
}

func TestBuildNutritionInsightsSkipsAbsent(t *testing.T) {
	facts := NutritionFacts{ProteinG: 10, FatG: -1, CarbohydratesG: -1, SaltG: -1}
	got := BuildNutritionInsights(context.Background(), nil, "Jerky", facts)
	if len(got) != 1 || got[0].Nutrient != "Protein" {
		t.Fatalf("got %+v", got)
	}
}

func TestCommentaryUsesModel(t *testing.T) {
	caller := &stubCaller{reply: "Plenty of protein for a single serving."}
	got := BuildNutritionInsights(context.Background(), caller, "Jerky", NutritionFacts{ProteinG: 14, FatG: -1, CarbohydratesG: -1, SaltG: -1})
	if got[0].AICommentary != "Plenty of protein for a single serving." {
		t.Fatalf("got %q", got[0].AICommentary)
	}
	if caller.calls != 1 {
		t.Fatalf("calls=%d", caller.calls)
	}
}

func TestCommentaryTruncatesModelReply(t *testing.T) {
	caller := &stubCaller{reply: strings.Repeat("very detailed nutritional analysis ", 10)}
	got := BuildNutritionInsights(context.Background(), caller, "Jerky", NutritionFacts{ProteinG: 14, FatG: -1, CarbohydratesG: -1, SaltG: -1})
	if len(got[0].AICommentary) > CommentaryMaxChars {
		t.Fatalf("commentary length %d exceeds cap", len(got[0].AICommentary))
	}
}

func TestCommentaryErrorFallsBack(t *testing.T) {
	caller := &stubCaller{err: errors.New("status code: 429")}
	got := BuildNutritionInsights(context.Background(), caller, "Jerky", NutritionFacts{ProteinG: 14, FatG: -1, CarbohydratesG: -1, SaltG: -1})
	if !strings.Contains(got[0].AICommentary, "protein") {
		t.Fatalf("expected templated fallback, got %q", got[0].AICommentary)
	}
}

func TestCommentaryMultilineReplyFallsBack(t *testing.T) {
	caller := &stubCaller{reply: "Line one.\nLine two."}
	got := BuildNutritionInsights(context.Background(), caller, "Jerky", NutritionFacts{ProteinG: 1, FatG: -1, CarbohydratesG: -1, SaltG: -1})
	if got[0].AICommentary != fallbackCommentary("Protein", "low") {
		t.Fatalf("got %q", got[0].AICommentary)
	}
}
