package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeImageDelete = "image:delete"
	TypeImageSweep  = "image:sweep"
)

// ImageDeletePayload names a stored image whose removal failed during a
// request.
type ImageDeletePayload struct {
	Key string `json:"key"`
}

func NewImageDeleteTask(payload ImageDeletePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageDelete, data,
		asynq.Queue("low"),
		asynq.MaxRetry(10),
		asynq.Timeout(time.Minute),
	), nil
}

// ImageSweepPayload is empty; the sweep always covers every recipe image.
type ImageSweepPayload struct{}

func NewImageSweepTask() *asynq.Task {
	return asynq.NewTask(TypeImageSweep, nil, asynq.Queue("low"), asynq.MaxRetry(1))
}
