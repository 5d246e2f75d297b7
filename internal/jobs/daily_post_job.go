package job

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/service"
)

// DailyPostJob generates the day's post and kicks off the approval flow.
// The service enforces the one-post-per-day rule, so an extra trigger is
// harmless.
type DailyPostJob struct {
	ps service.PostService
}

func NewDailyPostJob(ps service.PostService) *DailyPostJob {
	return &DailyPostJob{ps: ps}
}

func (j *DailyPostJob) Run() {
	ctx := context.Background()

	post, err := j.ps.RunDaily(ctx)
	if err != nil {
		if service.IsValidationError(err) {
			slog.Info("daily post skipped", "reason", err.Error())
			return
		}
		slog.Error("daily post generation failed", "error", err)
		return
	}

	slog.Info("daily post generated, approval email sent", "post_id", post.ID, "topic", post.Topic)
}
