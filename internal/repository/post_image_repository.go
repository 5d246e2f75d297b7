package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

type PostImageRepository interface {
	ReplaceForPost(ctx context.Context, postID int64, images []*models.PostImage) error
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostImage, error)
}

type postImageRepository struct {
	db *sql.DB
}

func NewPostImageRepository(db *sql.DB) PostImageRepository {
	return &postImageRepository{db: db}
}

// ReplaceForPost swaps a post's image descriptors atomically. A publish
// retry re-renders everything, so stale rows from the prior attempt are
// dropped first.
func (r *postImageRepository) ReplaceForPost(ctx context.Context, postID int64, images []*models.PostImage) error {
	err := withRetry(ctx, r.db, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM post_images WHERE post_id = $1`, postID); err != nil {
			return err
		}

		query := `
			INSERT INTO post_images (post_id, display_order, local_path, primary_id, primary_url, backup_id, backup_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, img := range images {
			_, err := tx.ExecContext(ctx, query,
				postID, img.DisplayOrder, img.LocalPath,
				img.PrimaryID, img.PrimaryURL, img.BackupID, img.BackupURL)
			if err != nil {
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postImageRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostImage, error) {
	query := `SELECT id, post_id, display_order, local_path, primary_id, primary_url, backup_id, backup_url, created_at
		FROM post_images WHERE post_id = $1 ORDER BY display_order`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var images []*models.PostImage
	for rows.Next() {
		var img models.PostImage
		err := rows.Scan(&img.ID, &img.PostID, &img.DisplayOrder, &img.LocalPath,
			&img.PrimaryID, &img.PrimaryURL, &img.BackupID, &img.BackupURL, &img.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		images = append(images, &img)
	}
	return images, rows.Err()
}
