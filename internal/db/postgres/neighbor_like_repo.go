package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/JwahoonKim/Waffle-Market/internal/core/neighbor"
)

type postgresNeighborLikeRepo struct {
	db *sql.DB
}

// NewNeighborLikeRepository creates a new PostgreSQL neighbor like repository
func NewNeighborLikeRepository(db *sql.DB) neighbor.LikeRepository {
	return &postgresNeighborLikeRepo{db: db}
}

// Find returns the like row for (user, post), or ErrLikeNotFound
func (r *postgresNeighborLikeRepo) Find(ctx context.Context, userID, postID int64) (*neighbor.Like, error) {
	like := &neighbor.Like{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, post_id, created_at FROM neighbor_likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID).
		Scan(&like.ID, &like.UserID, &like.PostID, &like.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, neighbor.ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find like: %w", err)
	}

	return like, nil
}

// Create inserts a like row; the unique pair constraint backstops races
func (r *postgresNeighborLikeRepo) Create(ctx context.Context, like *neighbor.Like) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO neighbor_likes (user_id, post_id) VALUES ($1, $2) RETURNING id, created_at`,
		like.UserID, like.PostID).
		Scan(&like.ID, &like.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return neighbor.ErrAlreadyLiked
		}
		return fmt.Errorf("failed to create like: %w", err)
	}

	return nil
}

// Delete removes the like row for (user, post)
func (r *postgresNeighborLikeRepo) Delete(ctx context.Context, userID, postID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM neighbor_likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return neighbor.ErrLikeNotFound
	}

	return nil
}
