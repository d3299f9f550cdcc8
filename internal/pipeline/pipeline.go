// Package pipeline orchestrates one product assessment: cache check,
// concurrent categorization and preliminary assembly, chunked literature
// search, merge, and graceful degradation down to a minimal deterministic
// result. GetAssessment only fails for requests that carry no usable risk
// rating after a total pipeline collapse.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meatwise/assessment-engine/internal/assessment"
	"github.com/meatwise/assessment-engine/internal/cache"
	"github.com/meatwise/assessment-engine/internal/categorize"
	"github.com/meatwise/assessment-engine/internal/citations"
	"github.com/meatwise/assessment-engine/internal/ingredients"
	"github.com/meatwise/assessment-engine/internal/llm"
	"github.com/meatwise/assessment-engine/internal/products"
)

// Version tags assessment cache keys together with categorize.Version, so
// prompt or schema changes invalidate cached assessments.
const Version = "v3"

const (
	// AssessmentTTL is deliberately shorter than ingredient-level caches:
	// assessments embed the externally supplied risk rating, which mutates.
	AssessmentTTL = 24 * time.Hour

	// PartialHitRatio is the cached-coverage threshold above which the
	// literature step skips live searches entirely.
	PartialHitRatio = 0.7

	// CitationsPerIngredient caps literature results per elevated ingredient.
	CitationsPerIngredient = 3

	chunkSize = 3
)

// InterChunkDelay spaces literature-search chunks to respect upstream rate
// limits. Tests shrink it.
var InterChunkDelay = 500 * time.Millisecond

// Config wires the engine's dependencies. Categorizer and Store are
// required; Literature and LitCache may be nil (no citations), Caller may be
// nil (templated nutrition commentary only).
type Config struct {
	Categorizer *categorize.Categorizer
	Literature  *citations.Client
	LitCache    *citations.Cache
	Store       cache.Store
	Caller      llm.Caller
	Now         func() time.Time
}

// Engine runs the assessment pipeline.
type Engine struct {
	categorizer *categorize.Categorizer
	lit         *citations.Client
	litCache    *citations.Cache
	store       cache.Store
	caller      llm.Caller
	tracer      trace.Tracer
	now         func() time.Time
}

func New(cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		categorizer: cfg.Categorizer,
		lit:         cfg.Literature,
		litCache:    cfg.LitCache,
		store:       cfg.Store,
		caller:      cfg.Caller,
		tracer:      otel.Tracer("pipeline"),
		now:         now,
	}
}

// assessmentKey includes the external rating so a rating change upstream
// rotates the cache entry instead of waiting out the TTL.
func assessmentKey(code, rating string) string {
	return cache.Key("assessment", Version, categorize.Version, code, rating)
}

// GetAssessment returns the assessment for one product, from cache when
// fresh. Any upstream outage degrades the result instead of failing it; an
// error escapes only when even the minimal fallback cannot be built.
func (e *Engine) GetAssessment(ctx context.Context, p products.Product) (assessment.Assessment, error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.get_assessment",
		trace.WithAttributes(attribute.String("product.code", p.Code)))
	defer span.End()

	key := assessmentKey(p.Code, p.RiskRating)
	if cached, ok := e.cachedAssessment(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	result, err := e.build(ctx, p)
	if err != nil {
		if p.RiskRating == "" {
			return assessment.Assessment{}, fmt.Errorf("assessment pipeline: %w", err)
		}
		log.Printf("pipeline degraded_to_minimal code=%s err=%v", p.Code, err)
		result = assessment.Minimal(p.Code, p.Name, p.RiskRating, e.nutrition(ctx, p), e.now())
	}

	e.cacheAssessment(ctx, key, result)
	return result, nil
}

// build runs the full pipeline. A panic anywhere inside is converted to an
// error so the caller can fall back to the minimal assessment.
func (e *Engine) build(ctx context.Context, p products.Product) (out assessment.Assessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	names := ingredients.Parse(p.IngredientsText)
	nutritionCh := make(chan []assessment.NutritionInsight, 1)
	catCh := make(chan categorize.Result, 1)

	// Real categorization and the preliminary pieces (nutrition commentary)
	// run concurrently; the merge waits on both.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("pipeline categorize_panic code=%s err=%v", p.Code, r)
				catCh <- categorize.FallbackResult(names)
			}
		}()
		catCh <- e.categorizer.Categorize(ctx, p.Name, p.IngredientsText)
	}()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("pipeline nutrition_panic code=%s err=%v", p.Code, r)
				nutritionCh <- nil
			}
		}()
		nutritionCh <- e.nutrition(ctx, p)
	}()

	cat := <-catCh
	nutrition := <-nutritionCh

	_, litSpan := e.tracer.Start(ctx, "pipeline.literature")
	lit := e.literature(ctx, cat)
	litSpan.End()

	return assessment.Assemble(assessment.Input{
		ProductCode:    p.Code,
		ProductName:    p.Name,
		RiskRating:     p.RiskRating,
		Categorization: cat,
		Literature:     lit,
		Nutrition:      nutrition,
		GeneratedAt:    e.now(),
	}), nil
}

func (e *Engine) nutrition(ctx context.Context, p products.Product) []assessment.NutritionInsight {
	return assessment.BuildNutritionInsights(ctx, e.caller, p.Name, assessment.NutritionFacts{
		ProteinG:       p.ProteinG,
		FatG:           p.FatG,
		CarbohydratesG: p.CarbohydratesG,
		SaltG:          p.SaltG,
	})
}

// literature gathers citations for every elevated ingredient. Cache first;
// above the partial-hit threshold the cached subset is used as-is. Misses
// are fetched in chunks, chunk N+1 strictly after chunk N, with a pause
// between chunks.
func (e *Engine) literature(ctx context.Context, cat categorize.Result) map[string][]citations.Citation {
	tiers := map[string]string{}
	claims := map[string]string{}
	for name, report := range cat.High {
		tiers[name] = "high"
		claims[name] = report
	}
	for name, report := range cat.Moderate {
		tiers[name] = "moderate"
		claims[name] = report
	}
	if len(tiers) == 0 || e.lit == nil {
		return nil
	}

	hits := map[string][]citations.Citation{}
	if e.litCache != nil {
		var ratio float64
		hits, ratio = e.litCache.LookupSet(ctx, tiers)
		if ratio >= PartialHitRatio {
			return hits
		}
	}

	var missing []string
	for name := range tiers {
		if _, ok := hits[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	for i := 0; i < len(missing); i += chunkSize {
		if i > 0 {
			select {
			case <-ctx.Done():
				return hits
			case <-time.After(InterChunkDelay):
			}
		}
		chunk := missing[i:min(i+chunkSize, len(missing))]
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, name := range chunk {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				cites := e.lit.Search(ctx, name, claims[name], CitationsPerIngredient)
				if e.litCache != nil {
					e.litCache.Put(ctx, name, tiers[name], cites)
				}
				mu.Lock()
				hits[name] = cites
				mu.Unlock()
			}(name)
		}
		wg.Wait()
	}
	return hits
}

func (e *Engine) cachedAssessment(ctx context.Context, key string) (assessment.Assessment, bool) {
	blob, ok, err := e.store.Get(ctx, key)
	if err != nil {
		log.Printf("pipeline cache_get_failed err=%v", err)
		return assessment.Assessment{}, false
	}
	if !ok {
		return assessment.Assessment{}, false
	}
	var a assessment.Assessment
	if err := json.Unmarshal(blob, &a); err != nil {
		log.Printf("pipeline cache_decode_failed err=%v", err)
		return assessment.Assessment{}, false
	}
	return a, true
}

func (e *Engine) cacheAssessment(ctx context.Context, key string, a assessment.Assessment) {
	blob, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := e.store.Set(ctx, key, blob, AssessmentTTL); err != nil {
		log.Printf("pipeline cache_set_failed err=%v", err)
	}
}
