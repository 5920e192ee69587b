package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/lib/pq"

	"github.com/JwahoonKim/Waffle-Market/internal/core/trade"
	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

const earthRadiusMeters = 6371000

// postSelect is the base projection for trade posts: the row itself plus the
// ordered image urls and the like count as correlated subqueries
const postSelect = `
	SELECT
		p.id, p.title, p.description, p.price,
		p.seller_id, p.buyer_id, p.status, p.view_count,
		p.latitude, p.longitude, p.created_at, p.updated_at,
		COALESCE((SELECT array_agg(i.url ORDER BY i.position)
			FROM trade_post_images i WHERE i.post_id = p.id), '{}') AS image_urls,
		(SELECT COUNT(*) FROM like_posts l WHERE l.post_id = p.id) AS like_count
	FROM trade_posts p`

// haversineFilter computes the great-circle distance in meters between the
// post coordinate and the viewer coordinate ($1 latitude, $2 longitude).
// haversineMeters is its Go mirror; keep the two formulas in sync.
const haversineFilter = `
	(2 * %d * asin(sqrt(
		power(sin(radians(p.latitude - $1) / 2), 2) +
		cos(radians($1)) * cos(radians(p.latitude)) *
		power(sin(radians(p.longitude - $2) / 2), 2)
	))) <= $3`

// haversineMeters is the Go rendering of haversineFilter, term for term
func haversineMeters(postLat, postLng, viewerLat, viewerLng float64) float64 {
	sinLat := math.Sin(radians(postLat-viewerLat) / 2)
	sinLng := math.Sin(radians(postLng-viewerLng) / 2)
	a := sinLat*sinLat + math.Cos(radians(viewerLat))*math.Cos(radians(postLat))*sinLng*sinLng
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

type postgresTradePostRepo struct {
	db *sql.DB
}

// NewTradePostRepository creates a new PostgreSQL trade post repository
func NewTradePostRepository(db *sql.DB) trade.PostRepository {
	return &postgresTradePostRepo{db: db}
}

// Create inserts the post and its ordered image rows in one transaction
func (r *postgresTradePostRepo) Create(ctx context.Context, post *trade.TradePost) (*trade.TradePost, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(tx)

	query := `
		INSERT INTO trade_posts (title, description, price, seller_id, status, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, view_count, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		post.Title, post.Description, post.Price, post.SellerID,
		post.Status, post.Latitude, post.Longitude).
		Scan(&post.ID, &post.ViewCount, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	if err := insertImages(ctx, tx, post.ID, post.ImageURLs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit post creation: %w", err)
	}

	return post, nil
}

// GetByID retrieves a post by id without resolving seller/buyer
func (r *postgresTradePostRepo) GetByID(ctx context.Context, id int64) (*trade.TradePost, error) {
	query := postSelect + ` WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trade.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// GetByIDWithUsers retrieves a post with seller and buyer resolved in a
// single fetch-join read
func (r *postgresTradePostRepo) GetByIDWithUsers(ctx context.Context, id int64) (*trade.TradePost, error) {
	query := `
	SELECT
		p.id, p.title, p.description, p.price,
		p.seller_id, p.buyer_id, p.status, p.view_count,
		p.latitude, p.longitude, p.created_at, p.updated_at,
		COALESCE((SELECT array_agg(i.url ORDER BY i.position)
			FROM trade_post_images i WHERE i.post_id = p.id), '{}') AS image_urls,
		(SELECT COUNT(*) FROM like_posts l WHERE l.post_id = p.id) AS like_count,
		s.username, s.email, s.location, s.latitude, s.longitude,
		s.temperature, s.search_scope, s.avatar_url, s.created_at, s.updated_at,
		b.username, b.email, b.location, b.latitude, b.longitude,
		b.temperature, b.search_scope, b.avatar_url, b.created_at, b.updated_at
	FROM trade_posts p
	INNER JOIN users s ON p.seller_id = s.id
	LEFT JOIN users b ON p.buyer_id = b.id
	WHERE p.id = $1`

	post := &trade.TradePost{}
	var buyerID sql.NullInt64
	var urls pq.StringArray
	seller := &users.User{}
	var sellerAvatar sql.NullString
	var bUsername, bEmail, bLocation, bAvatar sql.NullString
	var bLat, bLng, bTemp, bScope sql.NullFloat64
	var bCreated, bUpdated sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Description, &post.Price,
		&post.SellerID, &buyerID, &post.Status, &post.ViewCount,
		&post.Latitude, &post.Longitude, &post.CreatedAt, &post.UpdatedAt,
		&urls, &post.LikeCount,
		&seller.Username, &seller.Email, &seller.Location, &seller.Latitude, &seller.Longitude,
		&seller.Temperature, &seller.SearchScope, &sellerAvatar, &seller.CreatedAt, &seller.UpdatedAt,
		&bUsername, &bEmail, &bLocation, &bLat, &bLng,
		&bTemp, &bScope, &bAvatar, &bCreated, &bUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trade.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post with users: %w", err)
	}

	post.ImageURLs = urls
	seller.ID = post.SellerID
	if sellerAvatar.Valid {
		seller.AvatarURL = &sellerAvatar.String
	}
	post.Seller = seller

	if buyerID.Valid {
		post.BuyerID = &buyerID.Int64
		buyer := &users.User{
			ID:          buyerID.Int64,
			Username:    bUsername.String,
			Email:       bEmail.String,
			Location:    bLocation.String,
			Latitude:    bLat.Float64,
			Longitude:   bLng.Float64,
			Temperature: bTemp.Float64,
			SearchScope: bScope.Float64,
			CreatedAt:   bCreated.Time,
			UpdatedAt:   bUpdated.Time,
		}
		if bAvatar.Valid {
			buyer.AvatarURL = &bAvatar.String
		}
		post.Buyer = buyer
	}

	return post, nil
}

// Update persists title/description/price and replaces the image rows
// wholesale, in one transaction
func (r *postgresTradePostRepo) Update(ctx context.Context, post *trade.TradePost) (*trade.TradePost, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer rollback(tx)

	query := `
		UPDATE trade_posts
		SET title = $2, description = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = tx.QueryRowContext(ctx, query, post.ID, post.Title, post.Description, post.Price).
		Scan(&post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trade.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM trade_post_images WHERE post_id = $1`, post.ID); err != nil {
		return nil, fmt.Errorf("failed to clear post images: %w", err)
	}
	if err := insertImages(ctx, tx, post.ID, post.ImageURLs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit post update: %w", err)
	}

	return post, nil
}

// Delete removes a post; image and like rows cascade
func (r *postgresTradePostRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trade_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return trade.ErrPostNotFound
	}

	return nil
}

// IncrementViewCount bumps the view counter in a single atomic UPDATE
func (r *postgresTradePostRepo) IncrementViewCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE trade_posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return nil
}

// SetTradeState persists a lifecycle transition
func (r *postgresTradePostRepo) SetTradeState(ctx context.Context, id int64, status trade.TradeStatus, buyerID *int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE trade_posts SET status = $2, buyer_id = $3, updated_at = NOW() WHERE id = $1`,
		id, status, buyerID)
	if err != nil {
		return fmt.Errorf("failed to set trade state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return trade.ErrPostNotFound
	}

	return nil
}

// Search returns one page of posts matching the discovery predicate,
// newest first
func (r *postgresTradePostRepo) Search(ctx context.Context, q trade.SearchQuery) ([]*trade.TradePost, error) {
	where, args := buildSearchPredicate(q)

	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(`%s %s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`,
		postSelect, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	defer closeRows(rows)

	return collectPosts(rows)
}

// CountSearch evaluates the same predicate as Search without pagination
func (r *postgresTradePostRepo) CountSearch(ctx context.Context, q trade.SearchQuery) (int, error) {
	where, args := buildSearchPredicate(q)
	query := `SELECT COUNT(*) FROM trade_posts p ` + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return total, nil
}

// ListBySeller returns every listing the user has posted, newest first
func (r *postgresTradePostRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*trade.TradePost, error) {
	query := postSelect + ` WHERE p.seller_id = $1 ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by seller: %w", err)
	}
	defer closeRows(rows)

	return collectPosts(rows)
}

// ListByBuyer returns the user's purchase history: completed trades where
// they are the buyer
func (r *postgresTradePostRepo) ListByBuyer(ctx context.Context, buyerID int64) ([]*trade.TradePost, error) {
	query := postSelect + `
		WHERE p.buyer_id = $1 AND p.status = $2
		ORDER BY p.updated_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, buyerID, trade.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts by buyer: %w", err)
	}
	defer closeRows(rows)

	return collectPosts(rows)
}

// ListLikedBy returns the posts the user has liked, most recently liked first
func (r *postgresTradePostRepo) ListLikedBy(ctx context.Context, userID int64) ([]*trade.TradePost, error) {
	query := postSelect + `
		INNER JOIN like_posts lk ON lk.post_id = p.id
		WHERE lk.user_id = $1
		ORDER BY lk.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked posts: %w", err)
	}
	defer closeRows(rows)

	return collectPosts(rows)
}

// TopLiked returns up to limit posts by like count descending, lowest id
// first on ties
func (r *postgresTradePostRepo) TopLiked(ctx context.Context, limit int) ([]*trade.TradePost, error) {
	query := postSelect + ` ORDER BY like_count DESC, p.id ASC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top liked posts: %w", err)
	}
	defer closeRows(rows)

	return collectPosts(rows)
}

// LikedPostIDs reports which of the given posts the user has liked, in a
// single batch query
func (r *postgresTradePostRepo) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id FROM like_posts WHERE user_id = $1 AND post_id = ANY($2)`,
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

// buildSearchPredicate renders the shared WHERE clause for Search and
// CountSearch so page contents and total count agree
func buildSearchPredicate(q trade.SearchQuery) (string, []interface{}) {
	where := "WHERE " + fmt.Sprintf(haversineFilter, earthRadiusMeters)
	args := []interface{}{q.Latitude, q.Longitude, q.Radius}

	if q.Keyword != "" {
		args = append(args, "%"+escapeLikePattern(q.Keyword)+"%")
		where += fmt.Sprintf(
			` AND (p.title ILIKE $%d ESCAPE '\' OR p.description ILIKE $%d ESCAPE '\')`,
			len(args), len(args))
	}
	if q.OnlyTrading {
		args = append(args, trade.StatusCompleted)
		where += fmt.Sprintf(` AND p.status <> $%d`, len(args))
	}

	return where, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern neutralizes LIKE wildcards in user-supplied keywords so
// they match literally instead of acting as pattern syntax
func escapeLikePattern(keyword string) string {
	return likeEscaper.Replace(keyword)
}

func scanPost(row rowScanner) (*trade.TradePost, error) {
	post := &trade.TradePost{}
	var buyerID sql.NullInt64
	var urls pq.StringArray

	err := row.Scan(&post.ID, &post.Title, &post.Description, &post.Price,
		&post.SellerID, &buyerID, &post.Status, &post.ViewCount,
		&post.Latitude, &post.Longitude, &post.CreatedAt, &post.UpdatedAt,
		&urls, &post.LikeCount)
	if err != nil {
		return nil, err
	}

	if buyerID.Valid {
		post.BuyerID = &buyerID.Int64
	}
	post.ImageURLs = urls
	return post, nil
}

func collectPosts(rows *sql.Rows) ([]*trade.TradePost, error) {
	var posts []*trade.TradePost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, postID int64, urls []string) error {
	for i, url := range urls {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trade_post_images (post_id, url, position) VALUES ($1, $2, $3)`,
			postID, url, i)
		if err != nil {
			return fmt.Errorf("failed to insert post image: %w", err)
		}
	}
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("failed to rollback transaction", slog.String("error", err.Error()))
	}
}
