// Package categorize buckets a product's ingredients into risk tiers using
// an LLM, with a deterministic all-low fallback when the model is
// unavailable. Categorize never returns an error: the worst outcome is a
// fallback result.
package categorize

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/meatwise/assessment-engine/internal/cache"
	"github.com/meatwise/assessment-engine/internal/ingredients"
	"github.com/meatwise/assessment-engine/internal/llm"
)

// Version tags cached categorizations; bump it when the prompt or parsing
// contract changes so stale entries rotate out.
const Version = "v2"

const (
	// DefaultTimeout bounds the LLM call.
	DefaultTimeout = 10 * time.Second

	// DefaultCacheTTL keeps successful categorizations for a week; identical
	// ingredient lists recur across barcodes.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// MicroReportMaxChars caps the per-ingredient causal statement.
	MicroReportMaxChars = 180
)

// FallbackNote is the micro-report attached to every ingredient when the
// model could not be reached.
const FallbackNote = "AI analysis unavailable; no elevated risk assigned pending review."

// LowRiskNote is the fixed sentence synthesized for low-risk ingredients;
// the model is not asked to produce low-tier analyses.
const LowRiskNote = "No known health concerns at typical consumption levels."

// Status records how a categorization concluded.
type Status string

const (
	StatusParsed   Status = "parsed"
	StatusTimeout  Status = "timeout"
	StatusError    Status = "error"
	StatusFallback Status = "fallback"
)

// Result maps each ingredient to a micro-report within its tier. Every
// parsed ingredient appears in exactly one tier.
type Result struct {
	High     map[string]string `json:"high"`
	Moderate map[string]string `json:"moderate"`
	Low      map[string]string `json:"low"`
	Fallback bool              `json:"fallback"`
	Status   Status            `json:"status"`
	Model    string            `json:"model,omitempty"`
}

// Ingredients returns the full ingredient→tier mapping.
func (r Result) Ingredients() map[string]string {
	out := make(map[string]string, len(r.High)+len(r.Moderate)+len(r.Low))
	for name := range r.High {
		out[name] = "high"
	}
	for name := range r.Moderate {
		out[name] = "moderate"
	}
	for name := range r.Low {
		out[name] = "low"
	}
	return out
}

// Categorizer drives the LLM call and owns the categorization cache.
type Categorizer struct {
	caller   llm.Caller
	store    cache.Store
	timeout  time.Duration
	cacheTTL time.Duration
}

// New builds a Categorizer. caller may be nil (everything falls back) and
// store may be nil (nothing is cached).
func New(caller llm.Caller, store cache.Store) *Categorizer {
	return &Categorizer{
		caller:   caller,
		store:    store,
		timeout:  DefaultTimeout,
		cacheTTL: DefaultCacheTTL,
	}
}

// WithTimeout overrides the LLM call bound; used by tests.
func (c *Categorizer) WithTimeout(d time.Duration) *Categorizer {
	c.timeout = d
	return c
}

// Categorize buckets every ingredient in ingredientsText. It consults the
// content-hash cache first and caches only successful (non-fallback)
// results. This method never returns an error.
func (c *Categorizer) Categorize(ctx context.Context, productName, ingredientsText string) Result {
	names := ingredients.Parse(ingredientsText)
	if len(names) == 0 {
		return Result{High: map[string]string{}, Moderate: map[string]string{}, Low: map[string]string{}, Status: StatusParsed}
	}

	key := cache.Key("categorize", Version, ingredientsText)
	if cached, ok := c.cachedResult(ctx, key); ok {
		return cached
	}

	if c.caller == nil {
		return FallbackResult(names)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.caller.Complete(callCtx, buildPrompt(productName, names))
	if err != nil {
		status := StatusError
		if llm.ClassifyError(err) == llm.FailureTimeout {
			status = StatusTimeout
		}
		log.Printf("categorize llm_failed product=%q status=%s err=%v", productName, status, err)
		res := FallbackResult(names)
		res.Status = status
		return res
	}

	res, parsed := parseReply(llm.StripCodeFences(reply), names)
	if !parsed {
		log.Printf("categorize reply_unparsable product=%q chars=%d", productName, len(reply))
		return FallbackResult(names)
	}
	res.Model = c.caller.ModelName()
	c.cacheResult(ctx, key, res)
	return res
}

// FallbackResult is the deterministic categorization used when the model is
// unavailable: every ingredient is low-risk with a generic note.
func FallbackResult(names []string) Result {
	low := make(map[string]string, len(names))
	for _, name := range names {
		low[name] = FallbackNote
	}
	return Result{
		High:     map[string]string{},
		Moderate: map[string]string{},
		Low:      low,
		Fallback: true,
		Status:   StatusFallback,
	}
}

func (c *Categorizer) cachedResult(ctx context.Context, key string) (Result, bool) {
	if c.store == nil {
		return Result{}, false
	}
	blob, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(blob, &res); err != nil {
		return Result{}, false
	}
	return res, true
}

func (c *Categorizer) cacheResult(ctx context.Context, key string, res Result) {
	if c.store == nil || res.Fallback {
		return
	}
	blob, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, blob, c.cacheTTL); err != nil {
		log.Printf("categorize cache_set_failed err=%v", err)
	}
}
