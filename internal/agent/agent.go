package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"form-agent/internal/cache"
	"form-agent/internal/llm"
	"form-agent/internal/store"
)

var (
	ErrDocumentNotReady = errors.New("document has no usable extracted text yet")
	ErrTooFewDocuments  = errors.New("holistic analysis requires at least two documents")
)

// Agent runs QA, summarization, and holistic analysis over stored
// documents, memoizing LLM responses in the cache.
type Agent struct {
	store    store.Store
	cache    cache.Cache
	llm      llm.Client
	log      *slog.Logger
	cacheTTL time.Duration
}

func New(log *slog.Logger, st store.Store, c cache.Cache, client llm.Client, cacheTTL time.Duration) *Agent {
	return &Agent{store: st, cache: c, llm: client, log: log, cacheTTL: cacheTTL}
}

type QAResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Cached     bool      `json:"cached"`
}

type SummaryResult struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Summary    string    `json:"summary"`
	KeyPoints  []string  `json:"key_points"`
	Cached     bool      `json:"cached"`
}

type HolisticResult struct {
	Prompt         string                     `json:"prompt"`
	Intermediary   []store.IntermediaryAnswer `json:"intermediary_results"`
	FinalSynthesis string                     `json:"final_synthesis"`
	Cached         bool                       `json:"cached"`
}

// Ask answers a question against a single document's extracted text.
func (a *Agent) Ask(ctx context.Context, docID uuid.UUID, question string) (QAResult, error) {
	doc, err := a.readyDocument(ctx, docID)
	if err != nil {
		return QAResult{}, err
	}

	result := QAResult{DocumentID: doc.ID, Filename: doc.Filename, Question: question}

	key := cache.Key(cache.ModeQA, question, doc.Text)
	if cached, err := a.cache.GetResponse(ctx, key); err == nil && cached != nil {
		a.log.Info("cache hit", "mode", cache.ModeQA, "document_id", doc.ID)
		result.Answer = cached.Text
		result.Cached = true
	} else {
		answer, err := a.llm.Answer(ctx, question, doc.Text)
		if err != nil {
			return QAResult{}, err
		}
		result.Answer = answer
		a.setCache(ctx, key, &cache.Response{Mode: cache.ModeQA, Prompt: question, Text: answer})
	}

	if _, err := a.store.SaveAnswer(ctx, doc.ID, question, result.Answer); err != nil {
		// The answer is still usable; persistence only feeds the report.
		a.log.Warn("failed to persist answer", "document_id", doc.ID, "err", err)
	}
	return result, nil
}

// Summarize produces a short summary with bullet key points for a document.
func (a *Agent) Summarize(ctx context.Context, docID uuid.UUID) (SummaryResult, error) {
	doc, err := a.readyDocument(ctx, docID)
	if err != nil {
		return SummaryResult{}, err
	}

	result := SummaryResult{DocumentID: doc.ID, Filename: doc.Filename}

	key := cache.Key(cache.ModeSummary, "", doc.Text)
	if cached, err := a.cache.GetResponse(ctx, key); err == nil && cached != nil {
		a.log.Info("cache hit", "mode", cache.ModeSummary, "document_id", doc.ID)
		result.Summary = cached.Text
		result.KeyPoints = cached.Points
		result.Cached = true
	} else {
		summary, points, err := a.llm.Summarize(ctx, doc.Text)
		if err != nil {
			return SummaryResult{}, err
		}
		result.Summary = summary
		result.KeyPoints = points
		a.setCache(ctx, key, &cache.Response{Mode: cache.ModeSummary, Text: summary, Points: points})
	}

	if err := a.store.SaveSummary(ctx, doc.ID, store.Summary{
		DocumentID: doc.ID,
		Summary:    result.Summary,
		KeyPoints:  result.KeyPoints,
	}); err != nil {
		a.log.Warn("failed to persist summary", "document_id", doc.ID, "err", err)
	}
	return result, nil
}

// Holistic answers a question across several documents: each document is
// queried individually, then the per-document answers are synthesized into
// one final answer.
func (a *Agent) Holistic(ctx context.Context, docIDs []uuid.UUID, prompt string) (HolisticResult, error) {
	if len(docIDs) < 2 {
		return HolisticResult{}, ErrTooFewDocuments
	}

	docs := make([]store.Document, len(docIDs))
	for i, id := range docIDs {
		doc, err := a.readyDocument(ctx, id)
		if err != nil {
			return HolisticResult{}, err
		}
		docs[i] = doc
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}

	key := cache.Key(cache.ModeHolistic, prompt, texts...)
	if cached, err := a.cache.GetResponse(ctx, key); err == nil && cached != nil {
		var result HolisticResult
		if err := json.Unmarshal([]byte(cached.Text), &result); err == nil {
			a.log.Info("cache hit", "mode", cache.ModeHolistic)
			result.Cached = true
			return result, nil
		}
		a.log.Warn("failed to decode cached analysis, recomputing", "err", err)
	}

	intermediary := make([]store.IntermediaryAnswer, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		g.Go(func() error {
			docPrompt := fmt.Sprintf("Document: '''%s'''\nQuestion: %s\nAnswer based on the document.", doc.Text, prompt)
			answer, err := a.llm.Complete(gctx, docPrompt)
			if err != nil {
				return fmt.Errorf("analysis of %s failed: %w", doc.Filename, err)
			}
			intermediary[i] = store.IntermediaryAnswer{
				DocumentID: doc.ID,
				Filename:   doc.Filename,
				Answer:     answer,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return HolisticResult{}, err
	}

	synthesis, err := a.llm.Complete(ctx, synthesisPrompt(prompt, intermediary))
	if err != nil {
		return HolisticResult{}, err
	}

	result := HolisticResult{
		Prompt:         prompt,
		Intermediary:   intermediary,
		FinalSynthesis: synthesis,
	}

	if data, err := json.Marshal(result); err == nil {
		a.setCache(ctx, key, &cache.Response{Mode: cache.ModeHolistic, Prompt: prompt, Text: string(data)})
	}

	if _, err := a.store.SaveAnalysis(ctx, store.Analysis{
		Prompt:         prompt,
		FinalSynthesis: synthesis,
		Intermediary:   intermediary,
	}); err != nil {
		a.log.Warn("failed to persist analysis", "err", err)
	}
	return result, nil
}

func (a *Agent) readyDocument(ctx context.Context, id uuid.UUID) (store.Document, error) {
	doc, err := a.store.GetDocument(ctx, id)
	if err != nil {
		return store.Document{}, err
	}
	switch doc.Status {
	case store.StatusReady:
		return doc, nil
	case store.StatusFailed:
		return store.Document{}, fmt.Errorf("extraction of %s failed: %s", doc.Filename, doc.Error)
	default:
		return store.Document{}, fmt.Errorf("%w: %s", ErrDocumentNotReady, doc.Filename)
	}
}

func (a *Agent) setCache(ctx context.Context, key string, resp *cache.Response) {
	if err := a.cache.SetResponse(ctx, key, resp, a.cacheTTL); err != nil {
		// Log cache write failure but don't fail the request
		a.log.Warn("failed to cache response", "err", err)
	}
}

func synthesisPrompt(prompt string, intermediary []store.IntermediaryAnswer) string {
	var b strings.Builder
	b.WriteString("Answers from multiple documents:\n")
	for _, res := range intermediary {
		fmt.Fprintf(&b, "%s: %s\n", res.Filename, res.Answer)
	}
	fmt.Fprintf(&b, "Synthesize a concise final answer to: %s.", prompt)
	return b.String()
}
