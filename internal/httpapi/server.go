// Package httpapi serves the product health-assessment endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/meatwise/assessment-engine/internal/assessment"
	"github.com/meatwise/assessment-engine/internal/identity"
	"github.com/meatwise/assessment-engine/internal/products"
	"github.com/meatwise/assessment-engine/internal/report"
)

// AssessmentProvider is the orchestration dependency; satisfied by
// pipeline.Engine.
type AssessmentProvider interface {
	GetAssessment(ctx context.Context, p products.Product) (assessment.Assessment, error)
}

// mobileCacheMaxAge backs the Cache-Control header on the mobile endpoint;
// it mirrors the 24h assessment cache TTL.
const mobileCacheMaxAge = 86400

type Server struct {
	lookup products.Lookup
	engine AssessmentProvider
	pdf    report.PDFRenderer
}

// NewServer wires the HTTP routes. pdf may be nil; the PDF endpoint then
// reports the feature unavailable.
func NewServer(lookup products.Lookup, engine AssessmentProvider, pdf report.PDFRenderer) http.Handler {
	s := &Server{lookup: lookup, engine: engine, pdf: pdf}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/products/{code}/assessment", s.handleAssessment)
	mux.HandleFunc("GET /v1/products/{code}/assessment/mobile", s.handleMobileAssessment)
	mux.HandleFunc("GET /v1/products/{code}/assessment/report", s.handleReportHTML)
	mux.HandleFunc("GET /v1/products/{code}/assessment/report.pdf", s.handleReportPDF)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// requestIdentity resolves the caller. There is no session layer here; an
// upstream gateway injects user headers for signed-in requests.
func requestIdentity(r *http.Request) identity.Identity {
	if id := r.Header.Get("X-User-Id"); id != "" {
		return identity.Authenticated{ID: id, Email: r.Header.Get("X-User-Email")}
	}
	return identity.Anonymous{}
}

// assess resolves the product and runs the pipeline, writing the error
// response itself when something failed.
func (s *Server) assess(w http.ResponseWriter, r *http.Request) (assessment.Assessment, bool) {
	code := r.PathValue("code")
	p, err := s.lookup.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("product %s not found", code))
		} else {
			log.Printf("httpapi lookup_failed code=%s err=%v", code, err)
			writeError(w, http.StatusInternalServerError, "product lookup failed")
		}
		return assessment.Assessment{}, false
	}

	a, err := s.engine.GetAssessment(r.Context(), p)
	if err != nil {
		log.Printf("httpapi assessment_failed code=%s err=%v", code, err)
		writeError(w, http.StatusInternalServerError, "assessment unavailable")
		return assessment.Assessment{}, false
	}
	return a, true
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestIdentity(r).(identity.Authenticated); ok {
		w.Header().Set("Vary", "X-User-Id")
	}
	a, ok := s.assess(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleMobileAssessment(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assess(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", mobileCacheMaxAge))
	writeJSON(w, http.StatusOK, assessment.MobileView(a))
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assess(w, r)
	if !ok {
		return
	}
	html, err := report.RenderHTML(assessment.BuildReportMarkdown(a), a.Metadata.ProductName)
	if err != nil {
		log.Printf("httpapi render_failed code=%s err=%v", a.Metadata.ProductCode, err)
		writeError(w, http.StatusInternalServerError, "report rendering failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.pdf == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf rendering not configured")
		return
	}
	a, ok := s.assess(w, r)
	if !ok {
		return
	}
	pdf, err := s.pdf.Render(r.Context(), assessment.BuildReportMarkdown(a), a.Metadata.ProductName)
	if err != nil {
		log.Printf("httpapi pdf_failed code=%s err=%v", a.Metadata.ProductCode, err)
		writeError(w, http.StatusInternalServerError, "pdf rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "assessment-"+a.Metadata.ProductCode+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
