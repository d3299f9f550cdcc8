package citations

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSource struct {
	name  string
	cites []Citation
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(context.Context, string, string, int) ([]Citation, error) {
	s.calls++
	return s.cites, s.err
}

func TestSearchPoolsAndRanks(t *testing.T) {
	a := &stubSource{name: "a", cites: []Citation{
		{Title: "Old but cited", Year: 2001, RelevanceScore: 0.9, SourceType: SourceAcademic},
	}}
	b := &stubSource{name: "b", cites: []Citation{
		{Title: "Recent middling", Year: 2023, RelevanceScore: 0.5, SourceType: SourceAcademic},
		{Title: "Recent strong", Year: 2022, RelevanceScore: 0.9, SourceType: SourceAcademic},
	}}
	c := NewClient([]Source{a, b}, time.Millisecond)

	got := c.Search(context.Background(), "sodium nitrite", "cancer risk", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(got))
	}
	// Composite key: score desc, then year desc.
	if got[0].Title != "Recent strong" || got[1].Title != "Old but cited" || got[2].Title != "Recent middling" {
		t.Fatalf("unexpected order: %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}
}

func TestSearchSurvivesSourceFailure(t *testing.T) {
	bad := &stubSource{name: "bad", err: errors.New("api down")}
	good := &stubSource{name: "good", cites: []Citation{{Title: "Works", Year: 2020, RelevanceScore: 0.4}}}
	c := NewClient([]Source{bad, good}, time.Millisecond)

	got := c.Search(context.Background(), "bha", "endocrine disruption", 3)
	if len(got) != 1 || got[0].Title != "Works" {
		t.Fatalf("got %v", got)
	}
}

func TestSearchDeduplicatesByNormalizedTitle(t *testing.T) {
	a := &stubSource{name: "a", cites: []Citation{
		{Title: "Nitrosamines in Cured Meat!", Year: 2019, RelevanceScore: 0.6, SourceType: SourceAcademic},
	}}
	b := &stubSource{name: "b", cites: []Citation{
		{Title: "nitrosamines in cured meat", Year: 2019, RelevanceScore: 0.8, URL: "https://doi.org/10.1/x", SourceType: SourceUnknown},
	}}
	c := NewClient([]Source{a, b}, time.Millisecond)

	got := c.Search(context.Background(), "sodium nitrite", "", 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 deduped citation, got %d", len(got))
	}
	if got[0].RelevanceScore != 0.8 {
		t.Fatalf("merge must keep the higher score, got %f", got[0].RelevanceScore)
	}
	if got[0].URL == "" {
		t.Fatal("merge must backfill the URL")
	}
}

func TestSearchCapsResults(t *testing.T) {
	var many []Citation
	for i := 0; i < 10; i++ {
		many = append(many, Citation{Title: "Paper " + string(rune('A'+i)), Year: 2000 + i, RelevanceScore: float64(i) / 10})
	}
	c := NewClient([]Source{&stubSource{name: "a", cites: many}}, time.Millisecond)
	got := c.Search(context.Background(), "salt", "", 2)
	if len(got) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(got))
	}
}

func TestSearchEmptyIngredient(t *testing.T) {
	src := &stubSource{name: "a"}
	c := NewClient([]Source{src}, time.Millisecond)
	if got := c.Search(context.Background(), "", "claim", 3); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if src.calls != 0 {
		t.Fatal("empty ingredient must not hit sources")
	}
}

func TestPaceEnforcesSpacing(t *testing.T) {
	c := NewClient([]Source{}, 20*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := c.pace(ctx, "pubmed"); err != nil {
			t.Fatalf("pace: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("three paced calls finished in %v, want >= 40ms", elapsed)
	}
}

func TestPaceRespectsCancel(t *testing.T) {
	c := NewClient([]Source{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	_ = c.pace(ctx, "s")
	cancel()
	if err := c.pace(ctx, "s"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDoiURL(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"10.1000/xyz", "https://doi.org/10.1000/xyz"},
		{"doi:10.1000/xyz", "https://doi.org/10.1000/xyz"},
		{"https://doi.org/10.1000/xyz", "https://doi.org/10.1000/xyz"},
		{"", ""},
	} {
		if got := doiURL(tc.in); got != tc.want {
			t.Fatalf("doiURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	if normalizeTitle("Nitrosamines, in Cured Meat (Review)") != normalizeTitle("NITROSAMINES IN CURED MEAT REVIEW") {
		t.Fatal("normalized titles should match")
	}
}
