package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/meatwise/assessment-engine/internal/cache"
	"github.com/meatwise/assessment-engine/internal/categorize"
	"github.com/meatwise/assessment-engine/internal/citations"
	"github.com/meatwise/assessment-engine/internal/httpapi"
	"github.com/meatwise/assessment-engine/internal/llm"
	"github.com/meatwise/assessment-engine/internal/pipeline"
	"github.com/meatwise/assessment-engine/internal/products"
	"github.com/meatwise/assessment-engine/internal/report"
	"github.com/meatwise/assessment-engine/internal/telemetry"
)

func main() {
	var (
		addr      = flag.String("addr", envOr("ASSESSMENT_ADDR", ":8080"), "HTTP listen address")
		productDB = flag.String("product-db", envOr("ASSESSMENT_PRODUCT_DB", "./data/products.db"), "Path to the product catalog SQLite file")
		cacheDB   = flag.String("cache-db", envOr("ASSESSMENT_CACHE_DB", ""), "Path to the shared cache SQLite file (empty: in-memory only)")
		pdfFlag   = flag.Bool("pdf", os.Getenv("ASSESSMENT_ENABLE_PDF") == "1", "Enable PDF report rendering via headless Chromium")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	otelShutdown, err := telemetry.Setup(ctx, strings.TrimSpace(os.Getenv("ASSESSMENT_OTLP_ENDPOINT")))
	if err != nil {
		log.Fatalf("telemetry setup: %v", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	caller, err := llm.NewCallerFromEnv()
	if err != nil {
		log.Printf("warning: llm unavailable, assessments will use the deterministic fallback: %v", err)
		caller = nil
	}

	store, err := buildStore(*cacheDB)
	if err != nil {
		log.Fatalf("cache setup: %v", err)
	}
	defer store.Close()

	catalog, err := products.NewSQLiteCatalog(*productDB)
	if err != nil {
		log.Fatalf("product catalog: %v", err)
	}
	defer catalog.Close()

	engine := pipeline.New(pipeline.Config{
		Categorizer: categorize.New(caller, store),
		Literature:  citations.NewClient(buildSources(), citations.DefaultMinInterval),
		LitCache:    citations.NewCache(store, citations.DefaultCacheTTL),
		Store:       store,
		Caller:      caller,
	})

	var pdf report.PDFRenderer
	if *pdfFlag {
		pdf = report.NewChromiumPDFRenderer()
	}

	handler := httpapi.NewServer(catalog, engine, pdf)
	srv := &http.Server{Addr: *addr, Handler: handler}

	go func() {
		log.Printf("assessment server listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Print("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// buildStore assembles the cache: a fast in-process tier, optionally backed
// by a shared SQLite tier that survives restarts.
func buildStore(cacheDB string) (cache.Store, error) {
	fast := cache.NewMemoryStore()
	if cacheDB == "" {
		return fast, nil
	}
	shared, err := cache.NewSQLiteStore(cacheDB)
	if err != nil {
		return nil, err
	}
	return cache.NewTiered(fast, shared), nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func buildSources() []citations.Source {
	sources := []citations.Source{
		&citations.PubMedSource{},
		&citations.CrossRefSource{MailTo: strings.TrimSpace(os.Getenv("CROSSREF_MAILTO"))},
		citations.AuthoritySource{},
	}
	if key := strings.TrimSpace(os.Getenv("SEMANTIC_SCHOLAR_API_KEY")); key != "" {
		sources = append(sources, &citations.SemanticScholarSource{APIKey: key})
	}
	return sources
}
