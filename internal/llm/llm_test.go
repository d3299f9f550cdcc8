package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifyError(t *testing.T) {
	for _, tc := range []struct {
		msg  string
		want FailureClass
	}{
		{"status code: 429 too many requests", FailureRateLimit},
		{"rate limit exceeded", FailureRateLimit},
		{"quota exceeded for project", FailureRateLimit},
		{"status code: 500 internal", FailureServer},
		{"status=503 upstream", FailureServer},
		{"status code: 400 bad request", FailureClient},
		{"connection reset by peer", FailureServer},
		{"failed after 5 retries while waiting 4 seconds", FailureServer},
	} {
		if got := ClassifyError(errMsg(tc.msg)); got != tc.want {
			t.Fatalf("ClassifyError(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestClassifyErrorTimeout(t *testing.T) {
	if got := ClassifyError(context.DeadlineExceeded); got != FailureTimeout {
		t.Fatalf("got %v", got)
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(errMsg("status code: 429")) {
		t.Fatal("429 must be retryable")
	}
	if Retryable(errMsg("status code: 400 bad request")) {
		t.Fatal("client errors must not be retryable")
	}
}

func TestStripCodeFences(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\nHIGH RISK:\n- BHA: bad\n```", "HIGH RISK:\n- BHA: bad"},
		{"plain text", "plain text"},
	} {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Fatalf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewAnthropicCallerFromEnvMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCallerFromEnv(); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewCallerFromEnvUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "bard")
	if _, err := NewCallerFromEnv(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestGeminiCallerComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request body: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "world"}}}},
			},
		})
	}))
	defer srv.Close()

	g := &GeminiCaller{apiKey: "k", baseURL: srv.URL, model: "gemini-2.0-flash", client: srv.Client()}
	got, err := g.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "world" {
		t.Fatalf("got %q", got)
	}
}

func TestGeminiCallerStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := &GeminiCaller{apiKey: "k", baseURL: srv.URL, model: "gemini-2.0-flash", client: srv.Client()}
	_, err := g.Complete(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if ClassifyError(err) != FailureRateLimit {
		t.Fatalf("429 body should classify as rate limit, got %v", ClassifyError(err))
	}
}

type errMsg string

func (e errMsg) Error() string { return string(e) }
