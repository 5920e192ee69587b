package neighbor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JwahoonKim/Waffle-Market/internal/core/users"
)

// DefaultPageSize and MaxPageSize bound the feed page. Transports apply the
// default when the caller omits a page size; the service itself rejects
// non-positive sizes.
const (
	DefaultPageSize = 15
	MaxPageSize     = 50
)

type neighborService struct {
	posts    PostRepository
	likes    LikeRepository
	userRepo users.UserRepository
	logger   *slog.Logger
}

// NewService creates a new neighbor feed service
func NewService(posts PostRepository, likes LikeRepository, userRepo users.UserRepository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &neighborService{
		posts:    posts,
		likes:    likes,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreatePost publishes a community post
func (s *neighborService) CreatePost(ctx context.Context, userID int64, content string) (*PostView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "content is required")
	}

	publisher, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	created, err := s.posts.Create(ctx, &NeighborPost{
		Content:     content,
		PublisherID: publisher.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neighbor post: %w", err)
	}
	created.Publisher = publisher

	s.logger.Info("neighbor post created",
		"post_id", created.ID,
		"publisher_id", publisher.ID)

	return &PostView{Post: created}, nil
}

// GetPost returns a single post with the viewer's like state
func (s *neighborService) GetPost(ctx context.Context, userID, postID int64) (*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return s.viewFor(ctx, userID, post)
}

// ListPosts returns one feed page, newest first, optionally keyword-filtered
func (s *neighborService) ListPosts(ctx context.Context, userID int64, req ListRequest) ([]*PostView, error) {
	if req.Limit <= 0 {
		return nil, NewValidationError("limit", "page size must be positive")
	}
	if req.Limit > MaxPageSize {
		return nil, NewValidationError("limit", fmt.Sprintf("page size must not exceed %d", MaxPageSize))
	}
	if req.Offset < 0 {
		return nil, NewValidationError("offset", "offset must not be negative")
	}
	req.Keyword = strings.TrimSpace(req.Keyword)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighbor posts: %w", err)
	}

	return s.viewsFor(ctx, userID, posts)
}

// UpdatePost edits the content; only the publisher may edit
func (s *neighborService) UpdatePost(ctx context.Context, userID, postID int64, content string) (*PostView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "content is required")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.PublisherID != userID {
		return nil, ErrNotPublisher
	}

	updated, err := s.posts.Update(ctx, postID, content)
	if err != nil {
		return nil, fmt.Errorf("failed to update neighbor post: %w", err)
	}
	updated.Publisher = post.Publisher

	return s.viewFor(ctx, userID, updated)
}

// DeletePost removes the post; only the publisher may delete
func (s *neighborService) DeletePost(ctx context.Context, userID, postID int64) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.PublisherID != userID {
		return ErrNotPublisher
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete neighbor post: %w", err)
	}

	s.logger.Info("neighbor post deleted",
		"post_id", postID,
		"publisher_id", userID)

	return nil
}

// MyPosts returns everything the user has published
func (s *neighborService) MyPosts(ctx context.Context, userID int64) ([]*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByPublisher(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list published posts: %w", err)
	}

	return s.viewsFor(ctx, userID, posts)
}

// LikedPosts returns everything the user has liked
func (s *neighborService) LikedPosts(ctx context.Context, userID int64) ([]*PostView, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByLiker(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked posts: %w", err)
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, &PostView{Post: p, IsLiked: true})
	}
	return views, nil
}

// ToggleLike flips the like relation for (user, post). Unlike trade posts
// there is no counterparty, so liking your own post is allowed.
func (s *neighborService) ToggleLike(ctx context.Context, userID, postID int64) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return err
	}

	_, err := s.likes.Find(ctx, userID, postID)
	switch {
	case err == nil:
		if err := s.likes.Delete(ctx, userID, postID); err != nil && !errors.Is(err, ErrLikeNotFound) {
			return fmt.Errorf("failed to remove like: %w", err)
		}
		return nil

	case errors.Is(err, ErrLikeNotFound):
		err := s.likes.Create(ctx, &Like{UserID: userID, PostID: postID})
		if errors.Is(err, ErrAlreadyLiked) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("failed to look up like: %w", err)
	}
}

func (s *neighborService) viewFor(ctx context.Context, viewerID int64, post *NeighborPost) (*PostView, error) {
	liked, err := s.posts.LikedPostIDs(ctx, viewerID, []int64{post.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve like state: %w", err)
	}
	return &PostView{Post: post, IsLiked: liked[post.ID]}, nil
}

func (s *neighborService) viewsFor(ctx context.Context, viewerID int64, posts []*NeighborPost) ([]*PostView, error) {
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
