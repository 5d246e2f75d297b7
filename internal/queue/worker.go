package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postpilot/internal/service"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := q.ps.Publish(ctx, payload.PostID); err != nil {
		log.Printf("Error publishing post %d: %v", payload.PostID, err)
		if service.IsValidationError(err) {
			// Re-running cannot fix a rejected publish.
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	return nil
}
