package models

import (
	"database/sql"
	"time"
)

type ApprovalAction string

const (
	ApprovalActionPending ApprovalAction = "pending"
	ApprovalActionAccept  ApprovalAction = "accept"
	ApprovalActionDecline ApprovalAction = "decline"
	ApprovalActionRetry   ApprovalAction = "retry"
)

// Approval records one approval decision for a post. A fresh email creates
// a fresh row; older rows stay in the table as history with their action
// left at pending.
type Approval struct {
	ID            int64          `db:"id"`
	PostID        int64          `db:"post_id"`
	EmailToken    string         `db:"email_token"`
	Action        ApprovalAction `db:"action"`
	ActionTakenAt sql.NullTime   `db:"action_taken_at"`
	CreatedAt     time.Time      `db:"created_at"`
}
