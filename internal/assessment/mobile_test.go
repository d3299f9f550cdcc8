package assessment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/meatwise/assessment-engine/internal/citations"
)

func TestMobileViewTopRisks(t *testing.T) {
	a := Assessment{
		Summary:     strings.Repeat("risk analysis ", 30),
		RiskSummary: RiskSummary{"D", "Red"},
		IngredientsAssessment: IngredientsAssessment{
			HighRisk: []Ingredient{
				{Name: "BHA", RiskLevel: "high"},
				{Name: "Sodium Nitrite", RiskLevel: "high"},
				{Name: "Sodium Phosphate", RiskLevel: "high"},
			},
			ModerateRisk: []Ingredient{{Name: "Carrageenan", RiskLevel: "moderate"}},
		},
		NutritionInsights: []NutritionInsight{
			{Nutrient: "Protein"}, {Nutrient: "Fat"}, {Nutrient: "Carbohydrates"}, {Nutrient: "Salt"},
		},
	}
	m := MobileView(a)

	if len(m.TopRisks) != 2 || m.TopRisks[0].Name != "BHA" || m.TopRisks[1].Name != "Sodium Nitrite" {
		t.Fatalf("got top risks %+v", m.TopRisks)
	}
	if len(m.Nutrition) != 3 {
		t.Fatalf("mobile view carries 3 fixed nutrients, got %d", len(m.Nutrition))
	}
	for _, n := range m.Nutrition {
		if n.Nutrient == "Carbohydrates" {
			t.Fatal("carbohydrates are not part of the mobile projection")
		}
	}
	if len(m.Summary) > MobileSummaryMaxChars {
		t.Fatalf("summary length %d exceeds mobile cap", len(m.Summary))
	}
}

func TestMobileViewFillsFromModerate(t *testing.T) {
	a := Assessment{
		IngredientsAssessment: IngredientsAssessment{
			HighRisk:     []Ingredient{{Name: "Sodium Nitrite"}},
			ModerateRisk: []Ingredient{{Name: "BHA"}, {Name: "Carrageenan"}},
		},
	}
	m := MobileView(a)
	if len(m.TopRisks) != 2 || m.TopRisks[1].Name != "BHA" {
		t.Fatalf("got %+v", m.TopRisks)
	}
}

func TestMobileViewKeepsURLLessCitations(t *testing.T) {
	a := Assessment{
		Citations: []citations.Citation{
			{ID: 1, Title: "With URL", URL: "https://doi.org/10.1/x"},
			{ID: 2, Title: "Without URL"},
		},
	}
	m := MobileView(a)
	if len(m.Citations) != 2 {
		t.Fatalf("URL-less citation must be preserved, got %d", len(m.Citations))
	}

	blob, err := json.Marshal(m.Citations[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(blob), `"url":""`) {
		t.Fatalf("url key must serialize even when empty, got %s", blob)
	}
}
