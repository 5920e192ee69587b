package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/JwahoonKim/Waffle-Market/internal/core/neighbor"
	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// neighborSelect joins the publisher (fetch-join) and counts likes inline
const neighborSelect = `
	SELECT
		n.id, n.content, n.publisher_id, n.created_at, n.updated_at,
		(SELECT COUNT(*) FROM neighbor_likes l WHERE l.post_id = n.id) AS like_count,
		u.username, u.email, u.location, u.latitude, u.longitude,
		u.temperature, u.search_scope, u.avatar_url, u.created_at, u.updated_at
	FROM neighbor_posts n
	INNER JOIN users u ON n.publisher_id = u.id`

type postgresNeighborRepo struct {
	db *sql.DB
}

// NewNeighborPostRepository creates a new PostgreSQL neighbor post repository
func NewNeighborPostRepository(db *sql.DB) neighbor.PostRepository {
	return &postgresNeighborRepo{db: db}
}

// Create inserts a new neighbor post
func (r *postgresNeighborRepo) Create(ctx context.Context, post *neighbor.NeighborPost) (*neighbor.NeighborPost, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO neighbor_posts (content, publisher_id) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		post.Content, post.PublisherID).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create neighbor post: %w", err)
	}

	return post, nil
}

// GetByID retrieves a post with its publisher resolved
func (r *postgresNeighborRepo) GetByID(ctx context.Context, id int64) (*neighbor.NeighborPost, error) {
	query := neighborSelect + ` WHERE n.id = $1`

	post, err := scanNeighborPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, neighbor.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get neighbor post: %w", err)
	}

	return post, nil
}

// Update replaces the content
func (r *postgresNeighborRepo) Update(ctx context.Context, id int64, content string) (*neighbor.NeighborPost, error) {
	post := &neighbor.NeighborPost{ID: id, Content: content}
	err := r.db.QueryRowContext(ctx,
		`UPDATE neighbor_posts SET content = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING publisher_id, created_at, updated_at`,
		id, content).
		Scan(&post.PublisherID, &post.CreatedAt, &post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, neighbor.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update neighbor post: %w", err)
	}

	return post, nil
}

// Delete removes a post; like rows cascade
func (r *postgresNeighborRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM neighbor_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete neighbor post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return neighbor.ErrPostNotFound
	}

	return nil
}

// List returns one feed page, newest first. A non-empty keyword applies a
// containment match on the content with LIKE wildcards escaped.
func (r *postgresNeighborRepo) List(ctx context.Context, req neighbor.ListRequest) ([]*neighbor.NeighborPost, error) {
	where := ""
	args := []interface{}{}

	if req.Keyword != "" {
		args = append(args, "%"+escapeLikePattern(req.Keyword)+"%")
		where = fmt.Sprintf(` WHERE n.content ILIKE $%d ESCAPE '\'`, len(args))
	}

	args = append(args, req.Limit, req.Offset)
	query := fmt.Sprintf(`%s%s ORDER BY n.created_at DESC, n.id DESC LIMIT $%d OFFSET $%d`,
		neighborSelect, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighbor posts: %w", err)
	}
	defer closeRows(rows)

	return collectNeighborPosts(rows)
}

// ListByPublisher returns everything the user has published, newest first
func (r *postgresNeighborRepo) ListByPublisher(ctx context.Context, publisherID int64) ([]*neighbor.NeighborPost, error) {
	query := neighborSelect + ` WHERE n.publisher_id = $1 ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.db.QueryContext(ctx, query, publisherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by publisher: %w", err)
	}
	defer closeRows(rows)

	return collectNeighborPosts(rows)
}

// ListByLiker returns the posts the user has liked, most recently liked first
func (r *postgresNeighborRepo) ListByLiker(ctx context.Context, likerID int64) ([]*neighbor.NeighborPost, error) {
	query := neighborSelect + `
		INNER JOIN neighbor_likes lk ON lk.post_id = n.id
		WHERE lk.user_id = $1
		ORDER BY lk.id DESC`

	rows, err := r.db.QueryContext(ctx, query, likerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by liker: %w", err)
	}
	defer closeRows(rows)

	return collectNeighborPosts(rows)
}

// LikedPostIDs reports which of the given posts the user has liked
func (r *postgresNeighborRepo) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id FROM neighbor_likes WHERE user_id = $1 AND post_id = ANY($2)`,
		userID, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query liked post ids: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan liked post id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating liked post ids: %w", err)
	}

	return result, nil
}

func scanNeighborPost(row rowScanner) (*neighbor.NeighborPost, error) {
	post := &neighbor.NeighborPost{}
	publisher := &users.User{}
	var avatarURL sql.NullString

	err := row.Scan(&post.ID, &post.Content, &post.PublisherID,
		&post.CreatedAt, &post.UpdatedAt, &post.LikeCount,
		&publisher.Username, &publisher.Email, &publisher.Location,
		&publisher.Latitude, &publisher.Longitude,
		&publisher.Temperature, &publisher.SearchScope, &avatarURL,
		&publisher.CreatedAt, &publisher.UpdatedAt)
	if err != nil {
		return nil, err
	}

	publisher.ID = post.PublisherID
	if avatarURL.Valid {
		publisher.AvatarURL = &avatarURL.String
	}
	post.Publisher = publisher

	return post, nil
}

func collectNeighborPosts(rows *sql.Rows) ([]*neighbor.NeighborPost, error) {
	var posts []*neighbor.NeighborPost
	for rows.Next() {
		post, err := scanNeighborPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan neighbor post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighbor post rows: %w", err)
	}
	return posts, nil
}
