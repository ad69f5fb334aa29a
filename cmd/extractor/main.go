package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"form-agent/internal/app"
	"form-agent/internal/extract"
	"form-agent/internal/httputil"
	"form-agent/internal/queue"
)

type extractTaskPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	Content    []byte    `json:"content"`
}

func main() {
	deps, err := app.BuildExtractor()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("extractor worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeExtract, func(ctx context.Context, task queue.Task) error {
			var payload extractTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleExtract(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps, "extractor")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("extractor service stopped", "err", err)
	}
}

func handleExtract(ctx context.Context, deps app.Deps, payload extractTaskPayload) error {
	log := deps.Log.With("document_id", payload.DocumentID, "filename", payload.Filename)

	text, err := deps.Extractor.Extract(ctx, extract.Input{
		Filename: payload.Filename,
		Format:   payload.Format,
		Content:  payload.Content,
	})
	if err != nil {
		// Extraction errors are terminal: re-running OCR on the same bytes
		// gives the same result. Record the message for the user instead of
		// sending the task back through the retry path.
		log.Warn("extraction failed", "err", err)
		return deps.Store.MarkFailed(ctx, payload.DocumentID, err.Error())
	}

	if err := deps.Store.SaveText(ctx, payload.DocumentID, text); err != nil {
		return err
	}

	// Drop stale responses in case this document was reprocessed
	if err := deps.Cache.InvalidateDocument(ctx, payload.DocumentID.String()); err != nil {
		log.Warn("failed to invalidate cache", "err", err)
	}

	log.Info("document extracted", "chars", len(text))
	return nil
}
