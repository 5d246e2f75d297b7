package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/service"
)

// staleAfter is how long a post may wait in pending before the approver
// gets a reminder email.
const staleAfter = 20 * time.Hour

type ReminderJob struct {
	ps service.PostService
}

func NewReminderJob(ps service.PostService) *ReminderJob {
	return &ReminderJob{ps: ps}
}

func (j *ReminderJob) Run() {
	ctx := context.Background()

	sent, err := j.ps.RemindStalePending(ctx, staleAfter)
	if err != nil {
		slog.Error("reminder run failed", "error", err)
		return
	}
	if sent > 0 {
		slog.Info("approval reminders sent", "count", sent)
	}
}
