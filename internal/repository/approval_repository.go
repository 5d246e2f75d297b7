package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type ApprovalRepository interface {
	Create(ctx context.Context, approval *models.Approval) (int64, error)
	GetByPostAndToken(ctx context.Context, postID int64, emailToken string) (*models.Approval, error)
	GetLatestByPostID(ctx context.Context, postID int64) (*models.Approval, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.Approval, error)
	MarkAction(ctx context.Context, id int64, action models.ApprovalAction) error
}

type approvalRepository struct {
	db *sql.DB
}

func NewApprovalRepository(db *sql.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *models.Approval) (int64, error) {
	query := `
		INSERT INTO approvals (post_id, email_token, action)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query, approval.PostID, approval.EmailToken, approval.Action).Scan(&id)
	})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *approvalRepository) GetByPostAndToken(ctx context.Context, postID int64, emailToken string) (*models.Approval, error) {
	query := `SELECT id, post_id, email_token, action, action_taken_at, created_at
		FROM approvals WHERE post_id = $1 AND email_token = $2`

	var approval models.Approval
	err := r.db.QueryRowContext(ctx, query, postID, emailToken).Scan(
		&approval.ID, &approval.PostID, &approval.EmailToken,
		&approval.Action, &approval.ActionTakenAt, &approval.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) GetLatestByPostID(ctx context.Context, postID int64) (*models.Approval, error) {
	query := `SELECT id, post_id, email_token, action, action_taken_at, created_at
		FROM approvals WHERE post_id = $1 ORDER BY id DESC LIMIT 1`

	var approval models.Approval
	err := r.db.QueryRowContext(ctx, query, postID).Scan(
		&approval.ID, &approval.PostID, &approval.EmailToken,
		&approval.Action, &approval.ActionTakenAt, &approval.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &approval, nil
}

func (r *approvalRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.Approval, error) {
	query := `SELECT id, post_id, email_token, action, action_taken_at, created_at
		FROM approvals WHERE post_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var approvals []*models.Approval
	for rows.Next() {
		var approval models.Approval
		err := rows.Scan(&approval.ID, &approval.PostID, &approval.EmailToken,
			&approval.Action, &approval.ActionTakenAt, &approval.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		approvals = append(approvals, &approval)
	}
	return approvals, rows.Err()
}

func (r *approvalRepository) MarkAction(ctx context.Context, id int64, action models.ApprovalAction) error {
	query := `UPDATE approvals SET action = $1, action_taken_at = $2 WHERE id = $3`

	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, action, time.Now(), id)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
