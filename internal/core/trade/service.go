package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// DefaultPageSize and MaxPageSize bound the discovery page. Transports apply
// the default when the caller omits a page size; the service itself rejects
// non-positive sizes.
const (
	DefaultPageSize = 15
	MaxPageSize     = 50

	topLikedLimit = 3
)

type tradeService struct {
	posts    PostRepository
	likes    LikeRepository
	userRepo users.UserRepository
	logger   *slog.Logger
}

// NewService creates a new trade service
func NewService(posts PostRepository, likes LikeRepository, userRepo users.UserRepository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &tradeService{
		posts:    posts,
		likes:    likes,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreatePost creates a listing owned by the caller. The post inherits the
// seller's coordinate so discovery can filter by distance.
func (s *tradeService) CreatePost(ctx context.Context, userID int64, req CreatePostRequest) (*PostView, error) {
	if err := validateCreateRequest(&req); err != nil {
		return nil, err
	}

	seller, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &TradePost{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		SellerID:    seller.ID,
		Status:      StatusTrading,
		Latitude:    seller.Latitude,
		Longitude:   seller.Longitude,
		ImageURLs:   req.ImageURLs,
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	created.Seller = seller

	s.logger.Info("trade post created",
		"post_id", created.ID,
		"seller_id", seller.ID)

	return &PostView{Post: created}, nil
}

// GetPost returns the detail view and bumps the view counter as a side
// effect of the read. The increment is a popularity signal, deliberately
// not idempotent.
func (s *tradeService) GetPost(ctx context.Context, userID, postID int64) (*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByIDWithUsers(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.posts.IncrementViewCount(ctx, postID); err != nil {
		return nil, fmt.Errorf("failed to increment view count: %w", err)
	}
	post.ViewCount++

	return s.viewFor(ctx, userID, post)
}

// SearchPosts runs the discovery query: posts within the viewer's search
// scope, optionally keyword-filtered, newest first, plus the total count of
// the same predicate. Count and page are two queries; drift under concurrent
// writes is accepted.
func (s *tradeService) SearchPosts(ctx context.Context, userID int64, req SearchRequest) (*PostPage, error) {
	if req.Limit <= 0 {
		return nil, NewValidationError("limit", "page size must be positive")
	}
	if req.Limit > MaxPageSize {
		return nil, NewValidationError("limit", fmt.Sprintf("page size must not exceed %d", MaxPageSize))
	}
	if req.Offset < 0 {
		return nil, NewValidationError("offset", "offset must not be negative")
	}

	viewer, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A non-positive search scope bounds nothing; short-circuit to an empty
	// page rather than asking the database for it.
	if viewer.SearchScope <= 0 {
		return &PostPage{Posts: []*PostView{}, Total: 0, Limit: req.Limit, Offset: req.Offset}, nil
	}

	q := SearchQuery{
		Latitude:    viewer.Latitude,
		Longitude:   viewer.Longitude,
		Radius:      viewer.SearchScope,
		Keyword:     strings.TrimSpace(req.Keyword),
		Limit:       req.Limit,
		Offset:      req.Offset,
		OnlyTrading: req.OnlyTrading,
	}

	posts, err := s.posts.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	total, err := s.posts.CountSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	views, err := s.viewsFor(ctx, userID, posts)
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: views, Total: total, Limit: req.Limit, Offset: req.Offset}, nil
}

// UpdatePost patches the listing; only the seller may edit. The image list
// replaces the stored one wholesale.
func (s *tradeService) UpdatePost(ctx context.Context, userID, postID int64, req UpdatePostRequest) (*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByIDWithUsers(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != userID {
		return nil, ErrNotPostOwner
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, NewValidationError("title", "title is required")
		}
		post.Title = *req.Title
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, NewValidationError("price", "price must not be negative")
		}
		post.Price = *req.Price
	}
	// A nil image list means the field was absent from the patch; only an
	// explicit list replaces the stored one.
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	updated.Seller = post.Seller
	updated.Buyer = post.Buyer

	return s.viewFor(ctx, userID, updated)
}

// DeletePost removes the listing; only the seller may delete. Deletion is
// permitted in any lifecycle state, including an active reservation.
func (s *tradeService) DeletePost(ctx context.Context, userID, postID int64) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.SellerID != userID {
		return ErrNotPostOwner
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.Info("trade post deleted",
		"post_id", postID,
		"seller_id", userID,
		"status", post.Status)

	return nil
}

// Reserve assigns a tentative buyer and moves the post to RESERVATION.
// Re-reserving overwrites the buyer; a COMPLETED post can't be reserved.
func (s *tradeService) Reserve(ctx context.Context, sellerID, buyerID, postID int64) (*ReservationView, error) {
	if _, err := s.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, err
	}
	buyer, err := s.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotPostOwner
	}

	if err := post.Reserve(buyerID); err != nil {
		return nil, err
	}

	if err := s.posts.SetTradeState(ctx, postID, post.Status, post.BuyerID); err != nil {
		return nil, fmt.Errorf("failed to persist reservation: %w", err)
	}

	s.logger.Info("trade reserved",
		"post_id", postID,
		"seller_id", sellerID,
		"buyer_id", buyerID)

	return &ReservationView{PostID: postID, Status: post.Status, Buyer: buyer}, nil
}

// Confirm finalizes a reserved trade
func (s *tradeService) Confirm(ctx context.Context, sellerID, postID int64) (*ReservationView, error) {
	if _, err := s.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByIDWithUsers(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotPostOwner
	}

	if err := post.Confirm(); err != nil {
		return nil, err
	}

	if err := s.posts.SetTradeState(ctx, postID, post.Status, post.BuyerID); err != nil {
		return nil, fmt.Errorf("failed to persist confirmation: %w", err)
	}

	s.logger.Info("trade completed",
		"post_id", postID,
		"seller_id", sellerID,
		"buyer_id", *post.BuyerID)

	return &ReservationView{PostID: postID, Status: post.Status, Buyer: post.Buyer}, nil
}

// Cancel clears a reservation and returns the post to TRADING
func (s *tradeService) Cancel(ctx context.Context, sellerID, postID int64) error {
	if _, err := s.userRepo.GetByID(ctx, sellerID); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.SellerID != sellerID {
		return ErrNotPostOwner
	}

	if err := post.Cancel(); err != nil {
		return err
	}

	if err := s.posts.SetTradeState(ctx, postID, post.Status, nil); err != nil {
		return fmt.Errorf("failed to persist cancellation: %w", err)
	}

	s.logger.Info("reservation cancelled",
		"post_id", postID,
		"seller_id", sellerID)

	return nil
}

// GetReservation returns the current lifecycle view of the seller's listing:
// the status and, while reserved or completed, the buyer
func (s *tradeService) GetReservation(ctx context.Context, sellerID, postID int64) (*ReservationView, error) {
	if _, err := s.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByIDWithUsers(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotPostOwner
	}

	return &ReservationView{PostID: postID, Status: post.Status, Buyer: post.Buyer}, nil
}

// ToggleLike flips the like relation for (user, post): creates it when
// absent, removes it when present. Sellers can't like their own listing.
// A concurrent duplicate insert hits the unique constraint and is treated
// as "already liked" rather than an error.
func (s *tradeService) ToggleLike(ctx context.Context, userID, postID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if user.ID == post.SellerID {
		return ErrOwnPostLike
	}

	_, err = s.likes.Find(ctx, userID, postID)
	switch {
	case err == nil:
		if err := s.likes.Delete(ctx, userID, postID); err != nil && !errors.Is(err, ErrLikeNotFound) {
			return fmt.Errorf("failed to remove like: %w", err)
		}
		s.logger.Info("post unliked", "post_id", postID, "user_id", userID)
		return nil

	case errors.Is(err, ErrLikeNotFound):
		err := s.likes.Create(ctx, &Like{UserID: userID, PostID: postID})
		if errors.Is(err, ErrAlreadyLiked) {
			// Lost the race to a concurrent toggle; the row exists, which is
			// the state we wanted.
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
		s.logger.Info("post liked", "post_id", postID, "user_id", userID)
		return nil

	default:
		return fmt.Errorf("failed to look up like: %w", err)
	}
}

// TopLikedPosts returns the 3 most-liked listings, lowest id first on ties
func (s *tradeService) TopLikedPosts(ctx context.Context, userID int64) ([]*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.TopLiked(ctx, topLikedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top liked posts: %w", err)
	}

	return s.viewsFor(ctx, userID, posts)
}

// BuyHistory returns the user's completed purchases
func (s *tradeService) BuyHistory(ctx context.Context, userID int64) ([]*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	return s.viewsFor(ctx, userID, posts)
}

// SellHistory returns every listing the user has posted
func (s *tradeService) SellHistory(ctx context.Context, userID int64) ([]*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListBySeller(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	return s.viewsFor(ctx, userID, posts)
}

// LikedPosts returns every listing the user has liked
func (s *tradeService) LikedPosts(ctx context.Context, userID int64) ([]*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked posts: %w", err)
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, &PostView{Post: p, IsLiked: true})
	}
	return views, nil
}

// viewFor decorates a single post with the viewer's like state
func (s *tradeService) viewFor(ctx context.Context, viewerID int64, post *TradePost) (*PostView, error) {
	liked, err := s.posts.LikedPostIDs(ctx, viewerID, []int64{post.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve like state: %w", err)
	}
	return &PostView{Post: post, IsLiked: liked[post.ID]}, nil
}

// viewsFor decorates posts with the viewer's like state in one batch lookup
func (s *tradeService) viewsFor(ctx context.Context, viewerID int64, posts []*TradePost) ([]*PostView, error) {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	liked := map[int64]bool{}
	if len(ids) > 0 {
		var err error
		liked, err = s.posts.LikedPostIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve like state: %w", err)
		}
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, &PostView{Post: p, IsLiked: liked[p.ID]})
	}
	return views, nil
}

func validateCreateRequest(req *CreatePostRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if req.Price < 0 {
		return NewValidationError("price", "price must not be negative")
	}
	return nil
}
