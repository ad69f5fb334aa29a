package llm

import (
	"context"
	"strings"
)

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	// Answer extracts the requested information from the document text.
	Answer(ctx context.Context, question, contextText string) (string, error)
	// Summarize produces a short summary paragraph plus bullet key points.
	Summarize(ctx context.Context, text string) (string, []string, error)
	// Complete runs a raw prompt; used for synthesis across documents.
	Complete(ctx context.Context, prompt string) (string, error)
}

// parseSummary splits a model response into summary and bullet points heuristically.
func parseSummary(content string) (string, []string) {
	lines := strings.Split(content, "\n")
	var points []string
	var summaryLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") {
			points = append(points, strings.TrimLeft(trimmed, "-* "))
		} else {
			summaryLines = append(summaryLines, trimmed)
		}
	}
	return strings.Join(summaryLines, " "), points
}
