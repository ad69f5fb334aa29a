package llm

import (
	"context"
	"log/slog"
)

// Failover tries the primary provider and falls back to a secondary one
// when the primary returns an error. When both fail the primary's error is
// returned, since that is the provider the operator configured first.
type Failover struct {
	primary  Client
	fallback Client
	log      *slog.Logger
}

// NewFailover wraps two clients into one.
func NewFailover(log *slog.Logger, primary, fallback Client) *Failover {
	return &Failover{primary: primary, fallback: fallback, log: log}
}

func (f *Failover) Answer(ctx context.Context, question, contextText string) (string, error) {
	answer, err := f.primary.Answer(ctx, question, contextText)
	if err == nil {
		return answer, nil
	}
	f.log.Warn("primary LLM failed, trying fallback", "err", err)
	fbAnswer, fbErr := f.fallback.Answer(ctx, question, contextText)
	if fbErr != nil {
		f.log.Error("fallback LLM failed", "err", fbErr)
		return "", err
	}
	return fbAnswer, nil
}

func (f *Failover) Summarize(ctx context.Context, text string) (string, []string, error) {
	summary, points, err := f.primary.Summarize(ctx, text)
	if err == nil {
		return summary, points, nil
	}
	f.log.Warn("primary LLM failed, trying fallback", "err", err)
	fbSummary, fbPoints, fbErr := f.fallback.Summarize(ctx, text)
	if fbErr != nil {
		f.log.Error("fallback LLM failed", "err", fbErr)
		return "", nil, err
	}
	return fbSummary, fbPoints, nil
}

func (f *Failover) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := f.primary.Complete(ctx, prompt)
	if err == nil {
		return result, nil
	}
	f.log.Warn("primary LLM failed, trying fallback", "err", err)
	fbResult, fbErr := f.fallback.Complete(ctx, prompt)
	if fbErr != nil {
		f.log.Error("fallback LLM failed", "err", fbErr)
		return "", err
	}
	return fbResult, nil
}
