package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"form-agent/internal/retry"
)

type TaskType string

// TaskTypeExtract is the only task the pipeline currently carries: pull
// text out of an uploaded document.
const TaskTypeExtract TaskType = "extract"

// Task is a unit of work published to the queue. Attempts and
// NotBefore travel with the task so retries survive a worker restart.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

type Handler func(context.Context, Task) error

// Queue is the minimal contract between the gateway (producer) and the
// extractor (consumer).
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// EnqueueWithRetry retries a failed publish with backoff. It exists for
// the upload path, where losing the task would strand the document in
// processing state.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = q.Enqueue(ctx, task); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.Backoff(attempt, base)):
		}
	}
	return err
}
