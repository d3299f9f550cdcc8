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

const pubmedDefaultBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedSource queries NCBI eutils in two steps: esearch for PMIDs, then
// esummary for titles and journals.
type PubMedSource struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func (s *PubMedSource) Name() string { return "pubmed" }

func (s *PubMedSource) base() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return pubmedDefaultBase
}

func (s *PubMedSource) Search(ctx context.Context, ingredient, claim string, limit int) ([]Citation, error) {
	if limit <= 0 {
		limit = 3
	}
	term := strings.TrimSpace(ingredient + " " + claim)

	ids, err := s.esearch(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.esummary(ctx, ids)
}

func (s *PubMedSource) esearch(ctx context.Context, term string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(limit)},
		"sort":    {"relevance"},
	}
	if s.APIKey != "" {
		params.Set("api_key", s.APIKey)
	}

	var parsed struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := s.getJSON(ctx, s.base()+"/esearch.fcgi?"+params.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}
	return parsed.ESearchResult.IDList, nil
}

func (s *PubMedSource) esummary(ctx context.Context, ids []string) ([]Citation, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}
	if s.APIKey != "" {
		params.Set("api_key", s.APIKey)
	}

	var parsed struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := s.getJSON(ctx, s.base()+"/esummary.fcgi?"+params.Encode(), &parsed); err != nil {
		return nil, fmt.Errorf("pubmed esummary: %w", err)
	}

	total := len(ids)
	var cites []Citation
	for i, id := range ids {
		raw, ok := parsed.Result[id]
		if !ok {
			continue
		}
		var doc struct {
			Title           string `json:"title"`
			FullJournalName string `json:"fulljournalname"`
			PubDate         string `json:"pubdate"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Title == "" {
			continue
		}
		c := Citation{
			Title:      strings.TrimSuffix(strings.TrimSpace(doc.Title), "."),
			Journal:    doc.FullJournalName,
			Year:       parseLeadingYear(doc.PubDate),
			URL:        "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
			SourceType: SourceAcademic,
		}
		// esearch relevance sort carries the signal; encode it positionally.
		if total > 1 {
			c.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.5
		} else {
			c.RelevanceScore = 1.0
		}
		cites = append(cites, c)
	}
	return cites, nil
}

func (s *PubMedSource) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := retry.DoRequest(ctx, client, req, retry.RateLimited(nil))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseLeadingYear pulls the year from pubdate strings like "2021 Mar 15".
func parseLeadingYear(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	y, err := strconv.Atoi(fields[0])
	if err != nil || y < 1800 || y > 2200 {
		return 0
	}
	return y
}
