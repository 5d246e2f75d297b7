package job

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/service"
)

// JobListingJob turns fresh upstream job listings into auto-approved posts
// and enqueues each for publishing.
type JobListingJob struct {
	ps          service.PostService
	asynqClient *asynq.Client
}

func NewJobListingJob(ps service.PostService, asynqClient *asynq.Client) *JobListingJob {
	return &JobListingJob{ps: ps, asynqClient: asynqClient}
}

func (j *JobListingJob) Run() {
	ctx := context.Background()

	posts, err := j.ps.RunJobListings(ctx)
	if err != nil {
		slog.Error("job listing generation failed", "error", err)
		return
	}

	for _, post := range posts {
		err := queue.EnqueuePublish(j.asynqClient, queue.PublishPostPayload{PostID: post.ID}, 0)
		if err != nil {
			slog.Error("error enqueueing listing post", "post_id", post.ID, "error", err)
		}
	}

	slog.Info("job listings processed", "count", len(posts))
}
