package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"form-agent/internal/retry"
)

const (
	subjectPrefix      = "forms.tasks."
	groupPrefix        = "extractors-"
	defaultMaxAttempts = 5
)

// NewNATS builds a Queue on top of a core NATS connection. Workers join
// a queue group per task type so extraction load spreads across
// replicas.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc}
}

type natsQueue struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (q *natsQueue) Enqueue(_ context.Context, task Task) error {
	if task.Type == "" {
		return errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.nc.Publish(subjectPrefix+string(task.Type), body)
}

func (q *natsQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	sub, err := q.nc.QueueSubscribe(
		subjectPrefix+string(taskType),
		groupPrefix+string(taskType),
		func(msg *nats.Msg) { q.consume(ctx, msg, handler) },
	)
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) consume(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "err", err)
		return
	}

	// Delayed retries are re-published with a NotBefore timestamp.
	if wait := time.Until(task.NotBefore); wait > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}

	err := handler(ctx, task)
	if err == nil {
		return
	}

	task.Attempts++
	if task.MaxAttempts <= 0 {
		task.MaxAttempts = defaultMaxAttempts
	}
	if task.Attempts >= task.MaxAttempts {
		q.log.Error("task permanently failed",
			"id", task.ID, "type", task.Type, "attempts", task.Attempts, "err", err)
		return
	}

	task.NotBefore = time.Now().Add(retry.Backoff(task.Attempts, time.Second))
	if reqErr := q.Enqueue(ctx, task); reqErr != nil {
		q.log.Error("failed to re-enqueue task",
			"id", task.ID, "type", task.Type, "handler_err", err, "enqueue_err", reqErr)
	}
}
