package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meatwise/assessment-engine/internal/retry"
)

const semanticDefaultBase = "https://api.semanticscholar.org/graph/v1"

const semanticFields = "title,year,venue,citationCount,externalIds,url"

// SemanticScholarSource queries the Semantic Scholar graph API. It is a
// best-effort source: the public tier rate-limits aggressively, so failures
// here are expected and must not sink the batch.
type SemanticScholarSource struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func (s *SemanticScholarSource) Name() string { return "semantic_scholar" }

func (s *SemanticScholarSource) base() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return semanticDefaultBase
}

type semanticResponse struct {
	Data []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title         string `json:"title"`
	Year          int    `json:"year"`
	Venue         string `json:"venue"`
	CitationCount int    `json:"citationCount"`
	URL           string `json:"url"`
	ExternalIDs   struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

func (s *SemanticScholarSource) Search(ctx context.Context, ingredient, claim string, limit int) ([]Citation, error) {
	if limit <= 0 {
		limit = 3
	}
	params := url.Values{
		"query":  {strings.TrimSpace(ingredient + " " + claim)},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base()+"/paper/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := retry.DoRequest(ctx, client, req, retry.RateLimited(nil))
	if err != nil {
		return nil, fmt.Errorf("semantic scholar request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar status code: %d", resp.StatusCode)
	}

	var parsed semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("semantic scholar response parse: %w", err)
	}

	var cites []Citation
	for _, p := range parsed.Data {
		if strings.TrimSpace(p.Title) == "" {
			continue
		}
		c := Citation{
			Title:          strings.TrimSpace(p.Title),
			Journal:        p.Venue,
			Year:           p.Year,
			SourceType:     SourceAcademic,
			RelevanceScore: citationCountScore(p.CitationCount),
		}
		c.URL = p.URL
		if c.URL == "" {
			c.URL = doiURL(p.ExternalIDs.DOI)
		}
		cites = append(cites, c)
	}
	return cites, nil
}
