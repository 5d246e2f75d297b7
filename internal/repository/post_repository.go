package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListPendingOlderThan(ctx context.Context, age time.Duration) ([]*models.Post, error)
	ExistsForDay(ctx context.Context, contentType string, day time.Time) (bool, error)
	UpdateStatus(ctx context.Context, status models.PostStatus, postID int64) error
	SetApproved(ctx context.Context, postID int64) error
	SetPosted(ctx context.Context, postID int64, mediaID string) error
	SetFailed(ctx context.Context, postID int64, errorMessage string) error
	ReplaceContent(ctx context.Context, postID int64, topic, content string, retryCount int) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, topic, content_type, content, external_id, status, retry_count, max_retries,
	published_media_id, error_message, generated_at, approved_at, posted_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID, &post.Topic, &post.ContentType, &post.Content, &post.ExternalID,
		&post.Status, &post.RetryCount, &post.MaxRetries, &post.PublishedMediaID,
		&post.ErrorMessage, &post.GeneratedAt, &post.ApprovedAt, &post.PostedAt,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (topic, content_type, content, external_id, status, retry_count, max_retries, generated_at, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query,
			post.Topic, post.ContentType, post.Content, post.ExternalID, post.Status,
			post.RetryCount, post.MaxRetries, post.GeneratedAt, post.ApprovedAt,
		).Scan(&id)
	})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListPendingOlderThan(ctx context.Context, age time.Duration) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 AND created_at < $2`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusPending, time.Now().Add(-age))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ExistsForDay(ctx context.Context, contentType string, day time.Time) (bool, error) {
	query := `SELECT 1 FROM posts WHERE content_type = $1 AND generated_at::date = $2::date LIMIT 1`

	var result int
	err := r.db.QueryRowContext(ctx, query, contentType, day).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, status models.PostStatus, postID int64) error {
	query := `UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3`

	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetApproved(ctx context.Context, postID int64) error {
	query := `UPDATE posts SET status = $1, approved_at = $2, error_message = NULL, updated_at = $2 WHERE id = $3`

	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, models.PostStatusApproved, time.Now(), postID)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetPosted(ctx context.Context, postID int64, mediaID string) error {
	query := `UPDATE posts SET status = $1, published_media_id = $2, posted_at = $3, error_message = NULL, updated_at = $3 WHERE id = $4`

	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, models.PostStatusPosted, mediaID, time.Now(), postID)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SetFailed(ctx context.Context, postID int64, errorMessage string) error {
	query := `UPDATE posts SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`

	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, errorMessage, time.Now(), postID)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) ReplaceContent(ctx context.Context, postID int64, topic, content string, retryCount int) error {
	query := `UPDATE posts SET topic = $1, content = $2, retry_count = $3, status = $4, updated_at = $5 WHERE id = $6`

	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, topic, content, retryCount, models.PostStatusPending, time.Now(), postID)
		return err
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
