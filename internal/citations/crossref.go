package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meatwise/assessment-engine/internal/retry"
)

const crossrefDefaultBase = "https://api.crossref.org"

// CrossRefSource queries the CrossRef works API. DOI-only records are
// normalized to https://doi.org URLs before being surfaced.
type CrossRefSource struct {
	Client  *http.Client
	BaseURL string
	// MailTo joins the polite pool; CrossRef asks for a contact address.
	MailTo string
}

func (s *CrossRefSource) Name() string { return "crossref" }

func (s *CrossRefSource) base() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return crossrefDefaultBase
}

type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	Title          []string `json:"title"`
	ContainerTitle []string `json:"container-title"`
	DOI            string   `json:"DOI"`
	URL            string   `json:"URL"`
	ReferencedBy   int      `json:"is-referenced-by-count"`
	Issued         struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

func (s *CrossRefSource) Search(ctx context.Context, ingredient, claim string, limit int) ([]Citation, error) {
	if limit <= 0 {
		limit = 3
	}
	params := url.Values{
		"query": {strings.TrimSpace(ingredient + " " + claim)},
		"rows":  {strconv.Itoa(limit)},
		"sort":  {"relevance"},
	}
	if s.MailTo != "" {
		params.Set("mailto", s.MailTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base()+"/works?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := retry.DoRequest(ctx, client, req, retry.RateLimited(nil))
	if err != nil {
		return nil, fmt.Errorf("crossref request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crossref status code: %d", resp.StatusCode)
	}

	var parsed crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("crossref response parse: %w", err)
	}

	var cites []Citation
	for _, w := range parsed.Message.Items {
		if len(w.Title) == 0 || strings.TrimSpace(w.Title[0]) == "" {
			continue
		}
		c := Citation{
			Title:          strings.TrimSpace(w.Title[0]),
			SourceType:     SourceAcademic,
			RelevanceScore: citationCountScore(w.ReferencedBy),
		}
		if len(w.ContainerTitle) > 0 {
			c.Journal = w.ContainerTitle[0]
		}
		if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
			c.Year = w.Issued.DateParts[0][0]
		}
		c.URL = w.URL
		if c.URL == "" {
			c.URL = doiURL(w.DOI)
		}
		cites = append(cites, c)
	}
	return cites, nil
}

// citationCountScore squashes a citation count into [0,1]; 100 citations
// saturate the signal.
func citationCountScore(count int) float64 {
	if count <= 0 {
		return 0.1
	}
	return math.Min(1.0, 0.1+0.9*float64(count)/100.0)
}
