package neighbor

import "context"

// PostRepository defines the interface for neighbor post persistence
type PostRepository interface {
	Create(ctx context.Context, post *NeighborPost) (*NeighborPost, error)

	// GetByID resolves the publisher together with the post
	GetByID(ctx context.Context, id int64) (*NeighborPost, error)

	Update(ctx context.Context, id int64, content string) (*NeighborPost, error)
	Delete(ctx context.Context, id int64) error

	// List returns one feed page, newest first. An empty keyword applies no
	// content filter.
	List(ctx context.Context, req ListRequest) ([]*NeighborPost, error)

	ListByPublisher(ctx context.Context, publisherID int64) ([]*NeighborPost, error)
	ListByLiker(ctx context.Context, likerID int64) ([]*NeighborPost, error)

	// LikedPostIDs reports which of the given posts the user has liked
	LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
}

// LikeRepository defines the interface for the (user, post) like relation
type LikeRepository interface {
	Find(ctx context.Context, userID, postID int64) (*Like, error)
	Create(ctx context.Context, like *Like) error
	Delete(ctx context.Context, userID, postID int64) error
}

// Service defines the interface for neighbor feed business logic
type Service interface {
	CreatePost(ctx context.Context, userID int64, content string) (*PostView, error)
	GetPost(ctx context.Context, userID, postID int64) (*PostView, error)
	ListPosts(ctx context.Context, userID int64, req ListRequest) ([]*PostView, error)
	UpdatePost(ctx context.Context, userID, postID int64, content string) (*PostView, error)
	DeletePost(ctx context.Context, userID, postID int64) error

	MyPosts(ctx context.Context, userID int64) ([]*PostView, error)
	LikedPosts(ctx context.Context, userID int64) ([]*PostView, error)

	ToggleLike(ctx context.Context, userID, postID int64) error
}
