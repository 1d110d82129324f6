package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
)

// Enqueuer hands image cleanup work to the worker.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueImageDelete(ctx context.Context, key string) error {
	task, err := NewImageDeleteTask(ImageDeletePayload{Key: key})
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue image delete: %w", err)
	}
	return nil
}
