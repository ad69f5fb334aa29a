package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewGeminiClient("test-key", "gemini-1.5-flash")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	c.baseURL = srv.URL
	return c, srv
}

func geminiReply(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return body
}

func TestGeminiComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	c, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiReply("Paris"))
	})

	answer, err := c.Complete(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Paris" {
		t.Errorf("got %q, want %q", answer, "Paris")
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected key as query param, got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if gotBody.Contents[0].Parts[0].Text != "What is the capital of France?" {
		t.Errorf("unexpected prompt: %q", gotBody.Contents[0].Parts[0].Text)
	}
}

func TestGeminiAPIErrorSurfaced(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		code    string
	}{
		{"auth error", http.StatusUnauthorized, "API key not valid", "UNAUTHENTICATED"},
		{"quota exceeded", http.StatusTooManyRequests, "Quota exceeded for requests", "RESOURCE_EXHAUSTED"},
		{"permission denied", http.StatusForbidden, "Permission denied on resource", "PERMISSION_DENIED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				body, _ := json.Marshal(map[string]any{
					"error": map[string]any{
						"code":    tt.status,
						"message": tt.message,
						"status":  tt.code,
					},
				})
				_, _ = w.Write(body)
			})

			_, err := c.Complete(context.Background(), "question")
			if err == nil {
				t.Fatal("expected error")
			}
			// The provider's message must reach the caller verbatim.
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error to contain %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	c, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.Complete(context.Background(), "question")
	if err == nil || !strings.Contains(err.Error(), "no candidates") {
		t.Errorf("expected no candidates error, got %v", err)
	}
}

func TestGeminiAnswerPrompt(t *testing.T) {
	var gotPrompt string
	c, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Contents[0].Parts[0].Text
		_, _ = w.Write(geminiReply("No answer found"))
	})

	_, err := c.Answer(context.Background(), "What is the due date?", "Invoice #42, total 99 EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPrompt, "Invoice #42") || !strings.Contains(gotPrompt, "What is the due date?") {
		t.Errorf("prompt missing context or question: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "No answer found") {
		t.Errorf("prompt missing fallback instruction: %q", gotPrompt)
	}
}

func TestGeminiSummarize(t *testing.T) {
	c, _ := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiReply("An invoice from ACME Corp.\nIt is due in March.\n- Total: 99 EUR\n- Due: 2024-03-01"))
	})

	summary, points, err := c.Summarize(context.Background(), "Invoice text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(summary, "ACME Corp") {
		t.Errorf("unexpected summary: %q", summary)
	}
	if len(points) != 2 {
		t.Errorf("expected 2 key points, got %v", points)
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient("", "gemini-1.5-flash"); err == nil {
		t.Error("expected error for empty api key")
	}
}
