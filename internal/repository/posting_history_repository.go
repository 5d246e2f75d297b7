package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

type PostingHistoryRepository interface {
	Create(ctx context.Context, history *models.PostingHistory) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error)
}

type postingHistoryRepository struct {
	db *sql.DB
}

func NewPostingHistoryRepository(db *sql.DB) PostingHistoryRepository {
	return &postingHistoryRepository{db: db}
}

func (r *postingHistoryRepository) Create(ctx context.Context, history *models.PostingHistory) (int64, error) {
	query := `
		INSERT INTO posting_history (post_id, media_id, used_backup, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query,
			history.PostID, history.MediaID, history.UsedBackup, history.ErrorMessage).Scan(&id)
	})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *postingHistoryRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostingHistory, error) {
	query := `SELECT id, post_id, media_id, used_backup, error_message, created_at
		FROM posting_history WHERE post_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PostingHistory
	for rows.Next() {
		var h models.PostingHistory
		err := rows.Scan(&h.ID, &h.PostID, &h.MediaID, &h.UsedBackup, &h.ErrorMessage, &h.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}
