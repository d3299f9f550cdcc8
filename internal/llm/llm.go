// Package llm provides the text-completion callers used by the risk
// categorizer and the nutrition commentary, plus transport-failure
// classification shared by their fallback logic.
package llm

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
)

// Caller is the narrow completion contract the pipeline depends on: one
// prompt in, plain text out.
type Caller interface {
	Complete(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// FailureClass buckets transport errors so callers can decide between
// retrying and falling back.
type FailureClass int

const (
	FailureNone FailureClass = iota
	FailureTimeout
	FailureRateLimit
	FailureServer
	FailureClient
)

var statusCodeRe = regexp.MustCompile(`(?:status(?:\s+code)?[:=\s]+)(\d{3})`)

// ClassifyError maps a transport error onto a failure class. Unknown errors
// classify as server failures, which are treated as retryable.
func ClassifyError(err error) FailureClass {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTimeout
	}
	msg := strings.ToLower(err.Error())
	if m := statusCodeRe.FindStringSubmatch(msg); len(m) == 2 {
		switch {
		case strings.HasPrefix(m[1], "429"):
			return FailureRateLimit
		case strings.HasPrefix(m[1], "5"):
			return FailureServer
		case strings.HasPrefix(m[1], "4"):
			return FailureClient
		}
	}
	switch {
	case strings.Contains(msg, "status 429"), strings.Contains(msg, "status=429"),
		strings.Contains(msg, "rate limit"), strings.Contains(msg, "quota"):
		return FailureRateLimit
	case strings.Contains(msg, "status 4"), strings.Contains(msg, "status=4"):
		return FailureClient
	default:
		return FailureServer
	}
}

// Retryable reports whether a failed call is worth another attempt.
func Retryable(err error) bool {
	switch ClassifyError(err) {
	case FailureTimeout, FailureRateLimit, FailureServer:
		return true
	default:
		return false
	}
}

// StripCodeFences removes a surrounding markdown code fence from a model
// response, tolerating a "json" or "text" language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "\n", 2)
	if len(parts) == 2 {
		s = parts[1]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimPrefix(s, "text")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
