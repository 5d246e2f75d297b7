package models

import (
	"database/sql"
	"fmt"
	"time"
)

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusDeclined PostStatus = "declined"
	PostStatusRetry    PostStatus = "retry"
	PostStatusPosted   PostStatus = "posted"
	PostStatusFailed   PostStatus = "failed"
)

const (
	ContentTypeDaily      = "daily"
	ContentTypeJobListing = "job_listing"
)

// ContentDelimiter separates the question half of generated content from
// the solution half. Content without it is single-part.
const ContentDelimiter = "|||SPLIT|||"

// transitions is the closed set of legal status moves. failed -> approved
// is the manual re-approval escape hatch for ops recovery.
var transitions = map[PostStatus][]PostStatus{
	PostStatusPending:  {PostStatusApproved, PostStatusDeclined, PostStatusRetry},
	PostStatusApproved: {PostStatusPosted, PostStatusFailed},
	PostStatusRetry:    {PostStatusPending},
	PostStatusFailed:   {PostStatusApproved},
}

func (s PostStatus) CanTransition(to PostStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status move without mutating anything. Callers
// apply the new status only when the returned error is nil.
func (s PostStatus) Transition(to PostStatus) (PostStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("invalid status transition: %s -> %s", s, to)
	}
	return to, nil
}

type Post struct {
	ID               int64          `db:"id" json:"id"`
	Topic            string         `db:"topic" json:"topic"`
	ContentType      string         `db:"content_type" json:"content_type"`
	Content          string         `db:"content" json:"content"`
	ExternalID       sql.NullString `db:"external_id" json:"external_id"`
	Status           PostStatus     `db:"status" json:"status"`
	RetryCount       int            `db:"retry_count" json:"retry_count"`
	MaxRetries       int            `db:"max_retries" json:"max_retries"`
	PublishedMediaID sql.NullString `db:"published_media_id" json:"published_media_id"`
	ErrorMessage     sql.NullString `db:"error_message" json:"error_message"`
	GeneratedAt      time.Time      `db:"generated_at" json:"generated_at"`
	ApprovedAt       sql.NullTime   `db:"approved_at" json:"approved_at"`
	PostedAt         sql.NullTime   `db:"posted_at" json:"posted_at"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Question returns the part of the content before ContentDelimiter, or the
// whole content when the delimiter is absent.
func (p *Post) Question() string {
	q, _ := SplitContent(p.Content)
	return q
}

// Solution returns the part of the content after ContentDelimiter, or ""
// when the delimiter is absent.
func (p *Post) Solution() string {
	_, s := SplitContent(p.Content)
	return s
}

type PostImage struct {
	ID           int64          `db:"id"`
	PostID       int64          `db:"post_id"`
	DisplayOrder int            `db:"display_order"`
	LocalPath    string         `db:"local_path"`
	PrimaryID    string         `db:"primary_id"`
	PrimaryURL   string         `db:"primary_url"`
	BackupID     sql.NullString `db:"backup_id"`
	BackupURL    sql.NullString `db:"backup_url"`
	CreatedAt    time.Time      `db:"created_at"`
}

type PostingHistory struct {
	ID           int64     `db:"id"`
	PostID       int64     `db:"post_id"`
	MediaID      string    `db:"media_id"`
	UsedBackup   bool      `db:"used_backup"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}
