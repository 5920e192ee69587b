package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/JwahoonKim/Waffle-Market/internal/core/trade"
)

type postgresLikeRepo struct {
	db *sql.DB
}

// NewLikeRepository creates a new PostgreSQL trade like repository
func NewLikeRepository(db *sql.DB) trade.LikeRepository {
	return &postgresLikeRepo{db: db}
}

// Find returns the like row for (user, post), or ErrLikeNotFound
func (r *postgresLikeRepo) Find(ctx context.Context, userID, postID int64) (*trade.Like, error) {
	like := &trade.Like{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, post_id, created_at FROM like_posts WHERE user_id = $1 AND post_id = $2`,
		userID, postID).
		Scan(&like.ID, &like.UserID, &like.PostID, &like.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trade.ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find like: %w", err)
	}

	return like, nil
}

// Create inserts a like row. The unique constraint on (user_id, post_id) is
// the backstop against concurrent duplicate toggles.
func (r *postgresLikeRepo) Create(ctx context.Context, like *trade.Like) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO like_posts (user_id, post_id) VALUES ($1, $2) RETURNING id, created_at`,
		like.UserID, like.PostID).
		Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return trade.ErrAlreadyLiked
		}
		return fmt.Errorf("failed to create like: %w", err)
	}

	return nil
}

// Delete removes the like row for (user, post)
func (r *postgresLikeRepo) Delete(ctx context.Context, userID, postID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM like_posts WHERE user_id = $1 AND post_id = $2`,
		userID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return trade.ErrLikeNotFound
	}

	return nil
}
