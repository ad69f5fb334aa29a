package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

// Analysis modes used as cache key namespaces.
const (
	ModeQA       = "qa"
	ModeSummary  = "summary"
	ModeHolistic = "holistic"
)

// Cache memoizes LLM responses keyed by document text and query.
type Cache interface {
	// GetResponse retrieves a cached response by key.
	// Returns nil if not found
	GetResponse(ctx context.Context, key string) (*Response, error)

	// SetResponse stores a response with TTL
	SetResponse(ctx context.Context, key string, resp *Response, ttl time.Duration) error

	// InvalidateDocument removes cached responses involving a document
	InvalidateDocument(ctx context.Context, docID string) error

	// Close closes the cache connection
	Close() error
}

// Response is a cached LLM result. For holistic analyses Text carries the
// serialized analysis rather than a single answer.
type Response struct {
	Mode   string   `json:"mode"`
	Prompt string   `json:"prompt"`
	Text   string   `json:"text"`
	Points []string `json:"points,omitempty"`
}

// Key derives a cache key from the analysis mode, the query, and the exact
// extracted text of every document involved. A changed document or question
// produces a different key, so stale answers are never served.
func Key(mode, prompt string, texts ...string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	for _, t := range texts {
		sum := sha256.Sum256([]byte(t))
		h.Write(sum[:])
	}
	return fmt.Sprintf("%s:%x", mode, h.Sum(nil))
}
