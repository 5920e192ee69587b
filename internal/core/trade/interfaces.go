package trade

import (
	"context"
)

// SearchQuery is the discovery predicate the repository evaluates. Page
// contents and the total count are computed against the same predicate.
type SearchQuery struct {
	Latitude    float64
	Longitude   float64
	Radius      float64 // meters
	Keyword     string  // raw; the repository escapes LIKE wildcards
	Limit       int
	Offset      int
	OnlyTrading bool // exclude COMPLETED posts
}

// PostRepository defines the interface for trade post persistence
type PostRepository interface {
	// Create inserts the post and its ordered image rows in one transaction
	Create(ctx context.Context, post *TradePost) (*TradePost, error)

	GetByID(ctx context.Context, id int64) (*TradePost, error)

	// GetByIDWithUsers resolves seller and buyer together with the post
	// (fetch-join read) to avoid repeated lookups
	GetByIDWithUsers(ctx context.Context, id int64) (*TradePost, error)

	// Update persists title/description/price and replaces the image rows
	// wholesale, in one transaction
	Update(ctx context.Context, post *TradePost) (*TradePost, error)

	Delete(ctx context.Context, id int64) error

	// IncrementViewCount bumps the view counter with a single atomic UPDATE
	IncrementViewCount(ctx context.Context, id int64) error

	// SetTradeState persists a lifecycle transition (status + buyer)
	SetTradeState(ctx context.Context, id int64, status TradeStatus, buyerID *int64) error

	// Search returns one page of posts matching the predicate, newest first.
	// CountSearch evaluates the same predicate without pagination.
	Search(ctx context.Context, q SearchQuery) ([]*TradePost, error)
	CountSearch(ctx context.Context, q SearchQuery) (int, error)

	ListBySeller(ctx context.Context, sellerID int64) ([]*TradePost, error)

	// ListByBuyer returns the user's purchase history: COMPLETED posts where
	// they are the buyer
	ListByBuyer(ctx context.Context, buyerID int64) ([]*TradePost, error)

	ListLikedBy(ctx context.Context, userID int64) ([]*TradePost, error)

	// TopLiked returns up to limit posts by like count descending, lowest id
	// first on ties
	TopLiked(ctx context.Context, limit int) ([]*TradePost, error)

	// LikedPostIDs reports which of the given posts the user has liked,
	// in a single batch query
	LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

// LikeRepository defines the interface for the (user, post) like relation
type LikeRepository interface {
	// Find returns the like row for the pair, or ErrLikeNotFound
	Find(ctx context.Context, userID, postID int64) (*Like, error)

	// Create inserts a like row. A concurrent duplicate insert surfaces as
	// ErrAlreadyLiked via the unique constraint.
	Create(ctx context.Context, like *Like) error

	Delete(ctx context.Context, userID, postID int64) error
}

// Service defines the interface for trade business logic
type Service interface {
	CreatePost(ctx context.Context, userID int64, req CreatePostRequest) (*PostView, error)
	GetPost(ctx context.Context, userID, postID int64) (*PostView, error)
	SearchPosts(ctx context.Context, userID int64, req SearchRequest) (*PostPage, error)
	UpdatePost(ctx context.Context, userID, postID int64, req UpdatePostRequest) (*PostView, error)
	DeletePost(ctx context.Context, userID, postID int64) error

	Reserve(ctx context.Context, sellerID, buyerID, postID int64) (*ReservationView, error)
	Confirm(ctx context.Context, sellerID, postID int64) (*ReservationView, error)
	Cancel(ctx context.Context, sellerID, postID int64) error

	// GetReservation is the seller's read of the current lifecycle state
	GetReservation(ctx context.Context, sellerID, postID int64) (*ReservationView, error)

	ToggleLike(ctx context.Context, userID, postID int64) error

	TopLikedPosts(ctx context.Context, userID int64) ([]*PostView, error)
	BuyHistory(ctx context.Context, userID int64) ([]*PostView, error)
	SellHistory(ctx context.Context, userID int64) ([]*PostView, error)
	LikedPosts(ctx context.Context, userID int64) ([]*PostView, error)
}
